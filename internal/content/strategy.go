package content

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"

	"forge/internal/store"
)

// Strategy is the decoded view of one strategy document. Quantitative
// fields are already coerced; absent fields hold zero values and the
// projection layer substitutes display defaults.
type Strategy struct {
	ID            string        `json:"id"`
	Name          string        `json:"name"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Tags          []string      `json:"tags"`
	APY           float64       `json:"apy"`
	TVL           float64       `json:"tvl"`
	Risk          string        `json:"risk"`
	MinInvestment float64       `json:"minInvestment"`
	MaxInvestment float64       `json:"maxInvestment"`
	Fee           string        `json:"fee"`
	TimeToSetup   string        `json:"timeToSetup"`
	Chains        []string      `json:"chains"`
	Protocols     []string      `json:"protocols"`
	Steps         []Step        `json:"steps"`
	Risks         []Risk        `json:"risks"`
	FAQ           []FAQ         `json:"faq"`
	Changelog     []ChangeEntry `json:"changelog"`
	ProtocolFees  []ProtocolFee `json:"protocolFees"`
	Author        string        `json:"author"`
	Status        string        `json:"status"`
	Featured      bool          `json:"featured"`
	LastUpdated   string        `json:"lastUpdated"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
}

// StrategyFromRecord decodes a document bag into a Strategy. Any field
// may be absent or of the wrong shape; decoding never fails.
func StrategyFromRecord(rec store.Record) Strategy {
	data := rec.Data
	return Strategy{
		ID:            rec.ID,
		Name:          fieldString(data, "name"),
		Description:   fieldString(data, "description"),
		Category:      fieldString(data, "category"),
		Tags:          fieldStrings(data, "tags"),
		APY:           fieldNumber(data, "apy"),
		TVL:           fieldNumber(data, "tvl"),
		Risk:          fieldString(data, "risk"),
		MinInvestment: fieldNumber(data, "minInvestment"),
		MaxInvestment: fieldNumber(data, "maxInvestment"),
		Fee:           fieldString(data, "fee"),
		TimeToSetup:   fieldString(data, "timeToSetup"),
		Chains:        fieldStrings(data, "chains"),
		Protocols:     fieldStrings(data, "protocols"),
		Steps:         parseSteps(fieldSlice(data, "steps")),
		Risks:         parseRisks(fieldSlice(data, "risks")),
		FAQ:           parseFAQ(fieldSlice(data, "faq")),
		Changelog:     parseChangelog(fieldSlice(data, "changelog")),
		ProtocolFees:  parseProtocolFees(fieldSlice(data, "protocolFees")),
		Author:        fieldString(data, "author"),
		Status:        fieldString(data, "status"),
		Featured:      fieldBool(data, "featured"),
		LastUpdated:   fieldString(data, "lastUpdated"),
		CreatedAt:     rec.CreatedAt,
		UpdatedAt:     rec.UpdatedAt,
	}
}

// Strategies exposes the strategy collection.
type Strategies struct {
	Store  store.RecordStore
	Logger *zap.Logger
}

// ListAll returns every strategy, newest first. An ordered query the
// store rejects (missing index) is retried as a plain fetch sorted in
// memory; the rejection is logged as a warning and never surfaced.
func (s *Strategies) ListAll(ctx context.Context) ([]Strategy, error) {
	records, err := s.listWithFallback(ctx, store.Query{OrderBy: "createdAt", Desc: true})
	if err != nil {
		s.logError("list strategies failed", err)
		return nil, err
	}
	return decodeStrategies(records), nil
}

// ListByCategory returns strategies of one category, newest first, with
// the same fallback discipline as ListAll.
func (s *Strategies) ListByCategory(ctx context.Context, category string) ([]Strategy, error) {
	records, err := s.listWithFallback(ctx, store.Query{
		Eq:      map[string]string{"category": category},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		s.logError("list strategies by category failed", err)
		return nil, err
	}
	return decodeStrategies(records), nil
}

// ListByAuthor returns strategies attributed to one author id.
func (s *Strategies) ListByAuthor(ctx context.Context, authorID string) ([]Strategy, error) {
	records, err := s.listWithFallback(ctx, store.Query{
		Eq:      map[string]string{"userId": authorID},
		OrderBy: "createdAt",
		Desc:    true,
	})
	if err != nil {
		s.logError("list strategies by author failed", err)
		return nil, err
	}
	return decodeStrategies(records), nil
}

func (s *Strategies) GetByID(ctx context.Context, id string) (Strategy, error) {
	rec, err := s.Store.Get(ctx, store.CollectionStrategies, id)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logError("get strategy failed", err)
		}
		return Strategy{}, err
	}
	return StrategyFromRecord(rec), nil
}

// Create stores a new strategy document. Status defaults to "active";
// write timestamps are store-assigned.
func (s *Strategies) Create(ctx context.Context, data map[string]any) (Strategy, error) {
	payload := make(map[string]any, len(data)+1)
	for k, v := range data {
		payload[k] = v
	}
	if _, ok := payload["status"]; !ok {
		payload["status"] = "active"
	}
	rec, err := s.Store.Create(ctx, store.CollectionStrategies, payload)
	if err != nil {
		s.logError("create strategy failed", err)
		return Strategy{}, err
	}
	return StrategyFromRecord(rec), nil
}

// Update shallow-merges partial into the stored document and refreshes
// the write timestamp. Nested arrays are replaced wholesale.
func (s *Strategies) Update(ctx context.Context, id string, partial map[string]any) (Strategy, error) {
	rec, err := s.Store.Update(ctx, store.CollectionStrategies, id, partial)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logError("update strategy failed", err)
		}
		return Strategy{}, err
	}
	return StrategyFromRecord(rec), nil
}

// Delete removes a strategy; deleting an absent id is not an error.
func (s *Strategies) Delete(ctx context.Context, id string) error {
	if err := s.Store.Delete(ctx, store.CollectionStrategies, id); err != nil {
		s.logError("delete strategy failed", err)
		return err
	}
	return nil
}

func (s *Strategies) listWithFallback(ctx context.Context, q store.Query) ([]store.Record, error) {
	records, err := s.Store.List(ctx, store.CollectionStrategies, q)
	if err == nil {
		return records, nil
	}
	var qerr *store.QueryError
	if !errors.As(err, &qerr) {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Warn("strategy query rejected, falling back to plain fetch", zap.Error(err))
	}
	records, err = s.Store.List(ctx, store.CollectionStrategies, store.Query{})
	if err != nil {
		return nil, err
	}
	records = filterRecords(records, q.Eq)
	sortNewestFirst(records)
	return records, nil
}

func (s *Strategies) logError(msg string, err error) {
	if s.Logger != nil {
		s.Logger.Error(msg, zap.Error(err))
	}
}

func decodeStrategies(records []store.Record) []Strategy {
	out := make([]Strategy, 0, len(records))
	for _, rec := range records {
		out = append(out, StrategyFromRecord(rec))
	}
	return out
}

func filterRecords(records []store.Record, eq map[string]string) []store.Record {
	if len(eq) == 0 {
		return records
	}
	out := records[:0]
	for _, rec := range records {
		keep := true
		for field, want := range eq {
			if fieldString(rec.Data, field) != want {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, rec)
		}
	}
	return out
}

func sortNewestFirst(records []store.Record) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
}
