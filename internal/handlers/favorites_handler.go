package handlers

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"tabl/internal/favorites"
	"tabl/internal/identity"
	"tabl/internal/repositories/interfaces"
	"tabl/internal/utils"
	"tabl/pkg/docstore"
	"tabl/pkg/logger"
	"tabl/pkg/websocket"
)

type FavoritesHandler struct {
	docs     docstore.Store
	clubs    interfaces.VenueRepository
	upgrader *websocket.Upgrader
	logger   *logger.Logger
}

func NewFavoritesHandler(docs docstore.Store, clubs interfaces.VenueRepository, upgrader *websocket.Upgrader, log *logger.Logger) *FavoritesHandler {
	return &FavoritesHandler{
		docs:     docs,
		clubs:    clubs,
		upgrader: upgrader,
		logger:   log,
	}
}

type favoritesResponse struct {
	ClubIDs []string       `json:"club_ids"`
	Clubs   []clubResponse `json:"clubs,omitempty"`
}

type toggleResponse struct {
	ClubID   string `json:"club_id"`
	Favorite bool   `json:"favorite"`
}

// session loads a favorites store for the caller. It lives until ctx is cancelled.
func (h *FavoritesHandler) session(ctx context.Context) (*favorites.Store, error) {
	store := favorites.NewStore(h.docs, identity.ContextProvider{}, h.logger)
	if err := store.Load(ctx); err != nil {
		return nil, err
	}
	return store, nil
}

// GetFavorites returns the favorite club ids; ?expand=clubs adds the clubs themselves.
func (h *FavoritesHandler) GetFavorites(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	store, err := h.session(ctx)
	if err != nil {
		respondError(c, err, "favorites")
		return
	}

	response := favoritesResponse{ClubIDs: store.IDs()}
	if c.Query("expand") == "clubs" {
		venues, err := h.clubs.List(ctx, 0)
		if err != nil {
			respondError(c, err, "club")
			return
		}
		for _, v := range store.Filter(venues) {
			response.Clubs = append(response.Clubs, newClubResponse(v))
		}
	}

	utils.SuccessResponse(c, "Favorites retrieved successfully", response)
}

func (h *FavoritesHandler) ToggleFavorite(c *gin.Context) {
	venue, ok := loadClub(c, h.clubs, "club_id")
	if !ok {
		return
	}

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	store, err := h.session(ctx)
	if err != nil {
		respondError(c, err, "favorites")
		return
	}

	favorite, err := store.Toggle(ctx, venue.ID)
	if err != nil {
		respondError(c, err, "favorites")
		return
	}

	utils.SuccessResponse(c, "Favorite updated successfully", toggleResponse{ClubID: venue.ID, Favorite: favorite})
}

// StreamFavorites upgrades to a websocket and pushes the id list after every change, starting
// with the current set.
func (h *FavoritesHandler) StreamFavorites(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	store, err := h.session(ctx)
	if err != nil {
		respondError(c, err, "favorites")
		return
	}

	client, err := h.upgrader.Upgrade(c.Writer, c.Request)
	if err != nil {
		return
	}
	defer client.Close()

	log := h.logger.WithContext(ctx)
	log.Debug("Favorites stream opened")

	for {
		select {
		case ids := <-store.Changes():
			if err := client.Send(websocket.NewMessage("favorites", ids)); err != nil {
				if !errors.Is(err, websocket.ErrClosed) {
					log.WithError(err).Warn("Dropping favorites stream")
				}
				return
			}

		case <-store.Done():
			if err := store.Err(); err != nil && !errors.Is(err, context.Canceled) {
				log.WithError(err).Warn("Favorites subscription ended")
			}
			return

		case <-client.Done():
			log.Debug("Favorites stream closed by client")
			return
		}
	}
}

