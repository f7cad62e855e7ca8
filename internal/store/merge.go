package store

import (
	"fmt"
	"time"

	"github.com/jinzhu/copier"
)

// AgentPatch is a partial update to an AgentRecord. Nil fields are left
// untouched; non-nil fields replace the base value wholesale (slices and
// sub-structs are not merged element-wise).
type AgentPatch struct {
	Name          *string       `json:"name,omitempty"`
	Title         *string       `json:"title,omitempty"`
	Description   *string       `json:"description,omitempty"`
	Creator       *string       `json:"creator,omitempty"`
	Category      *string       `json:"category,omitempty"`
	Status        *AgentStatus  `json:"status,omitempty"`
	PriceDetails  *PriceDetails `json:"priceDetails,omitempty"`
	Price         *LegacyPrice  `json:"price,omitempty"`
	Tags          *[]string     `json:"tags,omitempty"`
	Features      *[]string     `json:"features,omitempty"`
	Popularity    *int          `json:"popularity,omitempty"`
	DownloadCount *int          `json:"downloadCount,omitempty"`
	Likes         *[]string     `json:"likes,omitempty"`
	Reviews       *[]Review     `json:"reviews,omitempty"`
}

// ApplyPatch returns a new record with the patch applied over the base.
// Precedence: any field set on the patch wins; everything else is a deep
// copy of the base. UpdatedAt is bumped and invariants re-established.
func ApplyPatch(base *AgentRecord, patch *AgentPatch) (*AgentRecord, error) {
	var out AgentRecord
	if err := copier.CopyWithOption(&out, base, copier.Option{DeepCopy: true}); err != nil {
		return nil, fmt.Errorf("failed to clone record: %w", err)
	}

	if patch != nil {
		if patch.Name != nil {
			out.Name = *patch.Name
		}
		if patch.Title != nil {
			out.Title = *patch.Title
		}
		if patch.Description != nil {
			out.Description = *patch.Description
		}
		if patch.Creator != nil {
			out.Creator = *patch.Creator
		}
		if patch.Category != nil {
			out.Category = *patch.Category
		}
		if patch.Status != nil {
			out.Status = *patch.Status
		}
		if patch.PriceDetails != nil {
			pd := *patch.PriceDetails
			out.PriceDetails = &pd
		}
		if patch.Price != nil {
			p := *patch.Price
			out.Price = &p
		}
		if patch.Tags != nil {
			out.Tags = append([]string(nil), *patch.Tags...)
		}
		if patch.Features != nil {
			out.Features = append([]string(nil), *patch.Features...)
		}
		if patch.Popularity != nil {
			out.Popularity = *patch.Popularity
		}
		if patch.DownloadCount != nil {
			out.DownloadCount = *patch.DownloadCount
		}
		if patch.Likes != nil {
			out.Likes = append([]string(nil), *patch.Likes...)
		}
		if patch.Reviews != nil {
			out.Reviews = append([]Review(nil), *patch.Reviews...)
		}
	}

	out.UpdatedAt = time.Now().UTC()
	out.Normalize()

	return &out, nil
}
