package service

import (
	"fmt"
	"html"
	"log"
	"os"
	"strings"
	"time"

	"brototype.com/complaintdesk/internal/model"
	"brototype.com/complaintdesk/internal/policy"
	"github.com/meilisearch/meilisearch-go"
	"github.com/microcosm-cc/bluemonday"
)

// SearchService keeps the Meilisearch complaint index in sync and hands out
// scoped tenant tokens so the frontend can search directly against Meilisearch
// without ever widening its visibility beyond what the API enforces.
type SearchService interface {
	IndexComplaint(complaint *model.Complaint) error
	GenerateSearchToken(caps policy.Capabilities) (string, error)
}

type searchService struct {
	client        meilisearch.ServiceManager
	masterKey     string
	signingKeyUID string
	signingKey    string
	sanitizer     *bluemonday.Policy
}

func NewSearchService(client meilisearch.ServiceManager) SearchService {
	masterKey := os.Getenv("MEILI_MASTER_KEY")
	if masterKey == "" {
		log.Println("WARNING: MEILI_MASTER_KEY is not set.")
	}

	s := &searchService{
		client:    client,
		masterKey: masterKey,
		sanitizer: bluemonday.StrictPolicy(),
	}
	s.initIndexes()
	s.initSigningKey()
	return s
}

func (s *searchService) initIndexes() {
	filterableAttrs := []string{"student_id", "status", "priority", "category_id"}
	filterableInterface := make([]any, len(filterableAttrs))
	for i, v := range filterableAttrs {
		filterableInterface[i] = v
	}
	_, err := s.client.Index("complaints").UpdateFilterableAttributes(&filterableInterface)
	if err != nil {
		log.Printf("Failed to update complaints filterable attributes: %v", err)
	}

	sortableAttrs := []string{"created_at"}
	_, err = s.client.Index("complaints").UpdateSortableAttributes(&sortableAttrs)
	if err != nil {
		log.Printf("Failed to update complaints sortable attributes: %v", err)
	}

	log.Println("Meilisearch indexes initialized")
}

func (s *searchService) initSigningKey() {
	resp, err := s.client.GetKeys(&meilisearch.KeysQuery{
		Limit: 20,
	})
	if err != nil {
		log.Printf("Failed to get meilisearch keys: %v", err)
		return
	}

	for _, key := range resp.Results {
		if key.Name == "TenantTokenSigner" {
			s.signingKeyUID = key.UID
			s.signingKey = key.Key
			log.Println("Found existing Meilisearch signing key")
			return
		}
	}

	expiry := time.Now().AddDate(100, 0, 0)

	key, err := s.client.CreateKey(&meilisearch.Key{
		Description: "Key to sign tenant tokens",
		Name:        "TenantTokenSigner",
		Actions:     []string{"search"},
		Indexes:     []string{"complaints"},
		ExpiresAt:   expiry,
	})
	if err != nil {
		log.Printf("Failed to create signing key: %v", err)
		return
	}

	s.signingKeyUID = key.UID
	s.signingKey = key.Key
	log.Println("Created new Meilisearch signing key")
}

type meiliComplaintDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	StudentID   string `json:"student_id"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`
	CategoryID  string `json:"category_id,omitempty"`
	CreatedAt   int64  `json:"created_at"`
}

func (s *searchService) cleanContentForIndex(content string) string {
	sanitized := s.sanitizer.Sanitize(content)
	cleanText := html.UnescapeString(sanitized)
	return strings.Join(strings.Fields(cleanText), " ")
}

func (s *searchService) IndexComplaint(complaint *model.Complaint) error {
	doc := meiliComplaintDoc{
		ID:          complaint.ID.String(),
		Title:       s.cleanContentForIndex(complaint.Title),
		Description: s.cleanContentForIndex(complaint.Description),
		StudentID:   complaint.StudentID.String(),
		Status:      string(complaint.Status),
		Priority:    string(complaint.Priority),
		CreatedAt:   complaint.CreatedAt.Unix(),
	}
	if complaint.CategoryID != nil {
		doc.CategoryID = complaint.CategoryID.String()
	}

	task, err := s.client.Index("complaints").AddDocuments([]meiliComplaintDoc{doc}, strPtr("id"))
	if err != nil {
		return err
	}
	log.Printf("Indexed complaint %s, task id: %d", complaint.ID, task.TaskUID)
	return nil
}

// GenerateSearchToken signs a tenant token whose filter mirrors the API's
// visibility rule: students only ever match their own complaints.
func (s *searchService) GenerateSearchToken(caps policy.Capabilities) (string, error) {
	if s.signingKeyUID == "" || s.signingKey == "" {
		return "", fmt.Errorf("signing key not initialized")
	}

	searchRules := map[string]any{
		"complaints": map[string]any{"filter": nil},
	}
	if !caps.CanListAll {
		searchRules["complaints"] = map[string]any{
			"filter": fmt.Sprintf("student_id = %s", caps.Actor().ID.String()),
		}
	}

	token, err := s.client.GenerateTenantToken(s.signingKeyUID, searchRules, &meilisearch.TenantTokenOptions{
		APIKey:    s.signingKey,
		ExpiresAt: time.Now().Add(24 * time.Hour),
	})
	if err != nil {
		return "", err
	}

	return token, nil
}

func strPtr(s string) *string {
	return &s
}
