package httphandler

import (
	"github.com/gofiber/fiber/v2"
)

func (h *HttpHandler) Mount(router fiber.Router) error {
	r := router.Group("/v1/marketplace")

	r.Post("/listings/batch", h.GetListingBatch)
	r.Get("/listings/:assetContract/:tokenId", h.GetListing)
	r.Get("/listings", h.GetListings)
	r.Get("/offers/:assetContract/:tokenId/:buyer", h.GetOffer)
	r.Get("/offers/:assetContract/:tokenId", h.GetOffers)
	r.Get("/subscriptions/:account", h.GetSubscription)
	r.Get("/tiers", h.GetSubscriptionTiers)
	r.Get("/fee-config", h.GetFeeConfig)
	return nil
}
