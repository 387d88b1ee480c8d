// Package campaign defines the domain model for one production run: the
// fixed five-stage specialist order, workflow phases, campaign lifecycle
// status, and the CampaignMetadata record persisted per campaign.
package campaign
