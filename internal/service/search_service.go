package service

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lokadeal/lokadeal-backend/internal/model"
	"github.com/meilisearch/meilisearch-go"
)

const dealIndex = "deals"

// SearchService indexes deals for discovery search. Indexing failures are
// logged, never propagated: search is best-effort and must not fail deal CRUD.
type SearchService interface {
	IndexDeal(deal *model.Deal) error
	DeleteDeal(id uint) error
	SearchDealIDs(query string, limit int) ([]uint, error)
}

type searchService struct {
	client meilisearch.ServiceManager
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	s := &searchService{client: client}
	s.initIndexes()
	return s
}

func (s *searchService) initIndexes() {
	_, err := s.client.CreateIndex(&meilisearch.IndexConfig{
		Uid:        dealIndex,
		PrimaryKey: "id",
	})
	if err != nil {
		log.Printf("Failed to ensure meilisearch deal index: %v", err)
		return
	}

	_, err = s.client.Index(dealIndex).UpdateSearchableAttributes(&[]string{
		"title", "description", "merchant_name",
	})
	if err != nil {
		log.Printf("Failed to configure deal index attributes: %v", err)
	}
}

type dealDocument struct {
	ID           uint   `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	MerchantName string `json:"merchant_name"`
}

func (s *searchService) IndexDeal(deal *model.Deal) error {
	doc := dealDocument{
		ID:           deal.ID,
		Title:        deal.Title,
		Description:  deal.Description,
		MerchantName: deal.Merchant.Name,
	}

	_, err := s.client.Index(dealIndex).AddDocuments([]dealDocument{doc}, strPtr("id"))
	if err != nil {
		return fmt.Errorf("failed to index deal %d: %w", deal.ID, err)
	}
	return nil
}

func (s *searchService) DeleteDeal(id uint) error {
	_, err := s.client.Index(dealIndex).DeleteDocument(fmt.Sprintf("%d", id))
	if err != nil {
		return fmt.Errorf("failed to delete deal %d from index: %w", id, err)
	}
	return nil
}

func (s *searchService) SearchDealIDs(query string, limit int) ([]uint, error) {
	resp, err := s.client.Index(dealIndex).Search(query, &meilisearch.SearchRequest{
		Limit: int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("deal search failed: %w", err)
	}

	return dealIDsFromHits(resp.Hits), nil
}

// dealIDsFromHits decodes the numeric id out of each raw hit. Hits without a
// decodable id are skipped.
func dealIDsFromHits(hits meilisearch.Hits) []uint {
	ids := make([]uint, 0, len(hits))
	for _, hit := range hits {
		raw, ok := hit["id"]
		if !ok {
			continue
		}
		var id uint
		if err := json.Unmarshal(raw, &id); err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func strPtr(s string) *string {
	return &s
}
