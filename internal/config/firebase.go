package config

const (
	DocumentStoreFirestore = "firestore"
	DocumentStoreMemory    = "memory"
)

type FirebaseConfig struct {
	ProjectID       string `yaml:"project_id"`
	CredentialsFile string `yaml:"credentials_file"`
	StorageBucket   string `yaml:"storage_bucket"`
	// DocumentStore selects firestore or the in-process memory store used for local runs.
	DocumentStore string `yaml:"document_store"`
}

func loadFirebaseConfig() *FirebaseConfig {
	return &FirebaseConfig{
		ProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		CredentialsFile: getEnv("GOOGLE_APPLICATION_CREDENTIALS", ""),
		StorageBucket:   getEnv("FIREBASE_STORAGE_BUCKET", ""),
		DocumentStore:   getEnv("DOCUMENT_STORE", DocumentStoreFirestore),
	}
}
