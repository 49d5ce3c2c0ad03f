package vertex

import (
	"context"
	"fmt"
	"strconv"

	aiplatform "cloud.google.com/go/aiplatform/apiv1"
	aiplatformpb "cloud.google.com/go/aiplatform/apiv1/aiplatformpb"
	"github.com/jmoiron/sqlx"
	"github.com/scripture-analysis-api/internal/models"
	"github.com/scripture-analysis-api/internal/repository"
	"google.golang.org/api/option"
)

// Ensure VectorSearchRepository implements repository.VectorSearchRepository
var _ repository.VectorSearchRepository = (*VectorSearchRepository)(nil)

// Config holds Vertex AI Vector Search configuration
type Config struct {
	ProjectID            string // GCP project ID
	Location             string // e.g., "us-central1"
	IndexEndpointID      string // Deployed index endpoint ID
	DeployedIndexID      string // The deployed index ID within the endpoint
	PublicEndpointDomain string // Public endpoint domain for queries (e.g., "123.us-central1-456.vdb.vertexai.goog")
}

// VectorSearchRepository implements repository.VectorSearchRepository
// using Vertex AI Vector Search. Datapoint ids are the decimal verse
// ids, so neighbor hits map straight back to verse rows. Ids that no
// longer resolve (stale index after a reseed) are dropped silently.
type VectorSearchRepository struct {
	config      Config
	matchClient *aiplatform.MatchClient
	db          *sqlx.DB // Used to look up verse text after getting IDs from Vertex AI
}

// NewVectorSearchRepository creates a new Vertex AI vector search repository
func NewVectorSearchRepository(ctx context.Context, config Config, db *sqlx.DB) (*VectorSearchRepository, error) {
	// For public endpoints, use the public domain; otherwise use regional endpoint
	var endpoint string
	if config.PublicEndpointDomain != "" {
		endpoint = fmt.Sprintf("%s:443", config.PublicEndpointDomain)
	} else {
		endpoint = fmt.Sprintf("%s-aiplatform.googleapis.com:443", config.Location)
	}

	matchClient, err := aiplatform.NewMatchClient(ctx, option.WithEndpoint(endpoint))
	if err != nil {
		return nil, fmt.Errorf("create match client: %w", err)
	}

	return &VectorSearchRepository{
		config:      config,
		matchClient: matchClient,
		db:          db,
	}, nil
}

// Close closes the Vertex AI client
func (r *VectorSearchRepository) Close() error {
	if r.matchClient != nil {
		return r.matchClient.Close()
	}
	return nil
}

// SearchVersesByEmbedding performs vector similarity search using Vertex AI Vector Search
func (r *VectorSearchRepository) SearchVersesByEmbedding(ctx context.Context, embedding []float64, topK int) ([]models.ScoredVerse, error) {
	indexEndpoint := fmt.Sprintf(
		"projects/%s/locations/%s/indexEndpoints/%s",
		r.config.ProjectID,
		r.config.Location,
		r.config.IndexEndpointID,
	)

	featureVector := make([]float32, len(embedding))
	for i, v := range embedding {
		featureVector[i] = float32(v)
	}

	req := &aiplatformpb.FindNeighborsRequest{
		IndexEndpoint:   indexEndpoint,
		DeployedIndexId: r.config.DeployedIndexID,
		Queries: []*aiplatformpb.FindNeighborsRequest_Query{
			{
				Datapoint: &aiplatformpb.IndexDatapoint{
					FeatureVector: featureVector,
				},
				NeighborCount: int32(topK),
			},
		},
	}

	resp, err := r.matchClient.FindNeighbors(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("find neighbors: %w", err)
	}

	if len(resp.NearestNeighbors) == 0 || len(resp.NearestNeighbors[0].Neighbors) == 0 {
		return []models.ScoredVerse{}, nil
	}

	neighbors := resp.NearestNeighbors[0].Neighbors

	verseIDs := make([]int64, 0, len(neighbors))
	scoreMap := make(map[int64]float64, len(neighbors))

	for _, neighbor := range neighbors {
		id, err := strconv.ParseInt(neighbor.Datapoint.DatapointId, 10, 64)
		if err != nil {
			// Datapoint from an older index layout; skip it.
			continue
		}
		verseIDs = append(verseIDs, id)
		// Vertex AI returns cosine distance; similarity = 1 - distance
		scoreMap[id] = float64(1 - neighbor.Distance)
	}

	results, err := r.lookupVerses(ctx, verseIDs, scoreMap)
	if err != nil {
		return nil, fmt.Errorf("lookup verses: %w", err)
	}

	return results, nil
}

// lookupVerses retrieves verse details from PostgreSQL given a list of verse IDs
func (r *VectorSearchRepository) lookupVerses(ctx context.Context, verseIDs []int64, scoreMap map[int64]float64) ([]models.ScoredVerse, error) {
	if len(verseIDs) == 0 {
		return []models.ScoredVerse{}, nil
	}

	query, args, err := sqlx.In(`
		SELECT v.id AS verse_id, b.name AS book, c.chapter_number, v.verse_number, v.text
		FROM verses v
		JOIN chapters c ON v.chapter_id = c.id
		JOIN books b ON c.book_id = b.id
		WHERE v.id IN (?)
	`, verseIDs)
	if err != nil {
		return nil, fmt.Errorf("build IN query: %w", err)
	}

	query = r.db.Rebind(query)

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query verses: %w", err)
	}
	defer rows.Close()

	verseMap := make(map[int64]models.ScoredVerse)
	for rows.Next() {
		var v models.ScoredVerse
		if err := rows.Scan(&v.VerseID, &v.Book, &v.Chapter, &v.Verse, &v.Text); err != nil {
			return nil, fmt.Errorf("scan verse: %w", err)
		}
		v.Score = scoreMap[v.VerseID]
		verseMap[v.VerseID] = v
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate verses: %w", err)
	}

	// Preserve the order from Vertex AI (sorted by relevance)
	results := make([]models.ScoredVerse, 0, len(verseIDs))
	for _, id := range verseIDs {
		if v, ok := verseMap[id]; ok {
			results = append(results, v)
		}
	}

	return results, nil
}
