package store

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AgentStatus represents the lifecycle state of a catalog record
type AgentStatus string

const (
	StatusActive  AgentStatus = "active"
	StatusDraft   AgentStatus = "draft"
	StatusRemoved AgentStatus = "removed"
)

// PriceDetails holds the structured pricing of a catalog record
type PriceDetails struct {
	BasePrice          float64 `json:"basePrice"`
	DiscountedPrice    float64 `json:"discountedPrice"`
	Currency           string  `json:"currency,omitempty"`
	IsFree             bool    `json:"isFree"`
	IsSubscription     bool    `json:"isSubscription"`
	DiscountPercentage float64 `json:"discountPercentage,omitempty"`
}

// Rating holds the aggregate review rating of a record
type Rating struct {
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// Review is a single user review embedded in a record
type Review struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	Rating    int       `json:"rating"` // 1-5
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewReview creates a review with a generated id and current timestamp
func NewReview(userID string, rating int, content string) Review {
	return Review{
		ID:        uuid.NewString(),
		UserID:    userID,
		Rating:    rating,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
}

// LegacyPrice holds the pre-priceDetails price field. Older documents
// store it as either a number or a display string such as "Free" or
// "$4.99"; both forms unmarshal into the raw string.
type LegacyPrice string

func (p *LegacyPrice) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*p = LegacyPrice(s)
		return nil
	}

	var n float64
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = LegacyPrice(strconv.FormatFloat(n, 'f', -1, 64))
	return nil
}

func (p LegacyPrice) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(p))
}

// Amount parses the legacy price permissively. "Free", "$0" and "0" all
// resolve to zero. The second return is false when no amount can be
// extracted.
func (p LegacyPrice) Amount() (float64, bool) {
	s := strings.TrimSpace(string(p))
	if s == "" {
		return 0, false
	}
	if strings.EqualFold(s, "free") {
		return 0, true
	}

	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// AgentRecord is a single catalog item offered on the marketplace.
// Optional sub-structs are pointers so that older documents missing them
// round-trip unchanged.
type AgentRecord struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Title         string        `json:"title,omitempty"`
	Description   string        `json:"description,omitempty"`
	Creator       string        `json:"creator,omitempty"`
	Category      string        `json:"category"`
	Status        AgentStatus   `json:"status,omitempty"`
	PriceDetails  *PriceDetails `json:"priceDetails,omitempty"`
	Price         *LegacyPrice  `json:"price,omitempty"`
	Rating        *Rating       `json:"rating,omitempty"`
	Tags          []string      `json:"tags,omitempty"`
	Features      []string      `json:"features,omitempty"`
	Popularity    int           `json:"popularity"`
	DownloadCount int           `json:"downloadCount"`
	CreatedAt     time.Time     `json:"createdAt,omitzero"`
	UpdatedAt     time.Time     `json:"updatedAt,omitzero"`
	Likes         []string      `json:"likes,omitempty"`
	Reviews       []Review      `json:"reviews,omitempty"`
}

// IsFree reports whether the record is offered at no cost, using the
// structured price when present and falling back to the legacy field.
func (r *AgentRecord) IsFree() bool {
	if r.PriceDetails != nil {
		return r.PriceDetails.IsFree || r.PriceDetails.BasePrice == 0
	}
	if r.Price != nil {
		v, ok := r.Price.Amount()
		return ok && v == 0
	}
	return false
}

// EffectivePrice returns the price used for range filtering: the
// discounted structured price when present, else the parsed legacy
// price, else +Inf so unpriceable records fall outside any range.
func (r *AgentRecord) EffectivePrice() float64 {
	if r.PriceDetails != nil {
		return r.PriceDetails.DiscountedPrice
	}
	if r.Price != nil {
		if v, ok := r.Price.Amount(); ok {
			return v
		}
	}
	return math.Inf(1)
}

// RatingAverage returns the aggregate rating, zero when absent.
func (r *AgentRecord) RatingAverage() float64 {
	if r.Rating == nil {
		return 0
	}
	return r.Rating.Average
}

// RatingCount returns the number of ratings, zero when absent.
func (r *AgentRecord) RatingCount() int {
	if r.Rating == nil {
		return 0
	}
	return r.Rating.Count
}

// CreatedTime returns the creation timestamp and whether it is resolvable.
func (r *AgentRecord) CreatedTime() (time.Time, bool) {
	return r.CreatedAt, !r.CreatedAt.IsZero()
}

// Active reports whether the record should be served. Records without a
// status predate the lifecycle field and count as active.
func (r *AgentRecord) Active() bool {
	return r.Status == "" || r.Status == StatusActive
}

// Normalize enforces the record invariants in place:
//   - reviews sorted by createdAt descending
//   - rating recomputed as the mean of review ratings when reviews exist
//   - isFree == (basePrice == 0) and discountedPrice <= basePrice
func (r *AgentRecord) Normalize() {
	sort.SliceStable(r.Reviews, func(i, j int) bool {
		return r.Reviews[i].CreatedAt.After(r.Reviews[j].CreatedAt)
	})

	if len(r.Reviews) > 0 {
		var sum int
		for _, rev := range r.Reviews {
			sum += rev.Rating
		}
		r.Rating = &Rating{
			Average: float64(sum) / float64(len(r.Reviews)),
			Count:   len(r.Reviews),
		}
	}

	if pd := r.PriceDetails; pd != nil {
		if pd.DiscountedPrice > pd.BasePrice || pd.DiscountedPrice == 0 {
			pd.DiscountedPrice = pd.BasePrice
		}
		pd.IsFree = pd.BasePrice == 0
		if pd.BasePrice > 0 {
			pd.DiscountPercentage = math.Round((1-pd.DiscountedPrice/pd.BasePrice)*100*100) / 100
		} else {
			pd.DiscountPercentage = 0
		}
	}
}
