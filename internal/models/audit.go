package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actors
const (
	ActorStaff   = "staff"
	ActorMember  = "member"
	ActorSystem  = "system"
	ActorWebhook = "webhook"
)

// Audited entities
const (
	EntityPage              = "page"
	EntityEvent             = "event"
	EntityPetition          = "petition"
	EntityPetitionSignature = "petition_signature"
	EntityElection          = "election"
	EntityFacet             = "facet"
	EntityDonationTier      = "donation_tier"
	EntityDonationProduct   = "donation_product"
	EntityMembership        = "membership"
)

// AuditLog records one admin change. Meta holds the changed fields.
type AuditLog struct {
	ID          uuid.UUID      `json:"id"`
	ActorUserID *uuid.UUID     `json:"actor_user_id,omitempty"`
	ActorType   string         `json:"actor_type"`
	Action      string         `json:"action"`
	EntityType  string         `json:"entity_type"`
	EntityID    *uuid.UUID     `json:"entity_id,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
