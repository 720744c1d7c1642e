package config

import "time"

const (
	StorageFirebase   = "firebase"
	StorageS3         = "s3"
	StorageCloudinary = "cloudinary"
	StorageLocal      = "local"
	StorageMemory     = "memory"
)

type StorageConfig struct {
	Provider string `yaml:"provider"`
	// URLExpiry bounds presigned download URLs on providers that sign them.
	URLExpiry      time.Duration            `yaml:"url_expiry"`
	MaxUploadBytes int64                    `yaml:"max_upload_bytes"`
	MaxPhotoPixels int64                    `yaml:"max_photo_pixels"`
	Local          *LocalStorageConfig      `yaml:"local"`
	AWS            *AWSStorageConfig        `yaml:"aws"`
	Cloudinary     *CloudinaryStorageConfig `yaml:"cloudinary"`
}

type LocalStorageConfig struct {
	BasePath string `yaml:"base_path"`
	BaseURL  string `yaml:"base_url"`
}

type AWSStorageConfig struct {
	Region    string `yaml:"region"`
	Bucket    string `yaml:"bucket"`
	CDNDomain string `yaml:"cdn_domain"`
}

type CloudinaryStorageConfig struct {
	URL    string `yaml:"url"`
	Folder string `yaml:"folder"`
}

func loadStorageConfig() *StorageConfig {
	return &StorageConfig{
		Provider:       getEnv("STORAGE_PROVIDER", StorageFirebase),
		URLExpiry:      getEnvAsDuration("STORAGE_URL_EXPIRY", 7*24*time.Hour),
		MaxUploadBytes: getEnvAsInt64("STORAGE_MAX_UPLOAD_BYTES", 10<<20),
		MaxPhotoPixels: getEnvAsInt64("STORAGE_MAX_PHOTO_PIXELS", 40_000_000),
		Local: &LocalStorageConfig{
			BasePath: getEnv("STORAGE_LOCAL_PATH", "./uploads"),
			BaseURL:  getEnv("STORAGE_LOCAL_URL", "http://localhost:8080/uploads"),
		},
		AWS: &AWSStorageConfig{
			Region:    getEnv("AWS_S3_REGION", "us-east-1"),
			Bucket:    getEnv("AWS_S3_BUCKET", ""),
			CDNDomain: getEnv("AWS_CLOUDFRONT_DOMAIN", ""),
		},
		Cloudinary: &CloudinaryStorageConfig{
			URL:    getEnv("CLOUDINARY_URL", ""),
			Folder: getEnv("CLOUDINARY_FOLDER", "tabl"),
		},
	}
}
