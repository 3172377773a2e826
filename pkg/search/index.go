// Package search maintains a full-text index over posts.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/Shingunhoon/Clix/pkg/model"
	"github.com/Shingunhoon/Clix/pkg/store"
)

// Index wraps a Bleve search index over posts.
type Index struct {
	index bleve.Index
	posts store.PostRepo
}

// IndexedPost is the searchable projection of a post.
type IndexedPost struct {
	ID        string
	Title     string
	Content   string
	Author    string
	TeamName  string
	TechStack []string
	Year      string
}

// Result is one search hit.
type Result struct {
	ID        string              `json:"id"`
	Title     string              `json:"title"`
	Author    string              `json:"author"`
	Year      string              `json:"year"`
	Score     float64             `json:"score"`
	Fragments map[string][]string `json:"fragments,omitempty"`
}

// Open creates an in-memory index over the given posts.
func Open(posts store.PostRepo) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	return &Index{index: idx, posts: posts}, nil
}

// buildIndexMapping creates the index mapping with an English analyzer
// on titles for better stemming.
func buildIndexMapping() mapping.IndexMapping {
	textFieldMapping := bleve.NewTextFieldMapping()

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = "en"

	docMapping := bleve.NewDocumentMapping()
	docMapping.AddFieldMappingsAt("ID", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Title", titleFieldMapping)
	docMapping.AddFieldMappingsAt("Content", textFieldMapping)
	docMapping.AddFieldMappingsAt("Author", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("TeamName", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("TechStack", bleve.NewTextFieldMapping())
	docMapping.AddFieldMappingsAt("Year", bleve.NewTextFieldMapping())

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", docMapping)
	return indexMapping
}

func toIndexed(p *model.Post) *IndexedPost {
	return &IndexedPost{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Author:    p.Author.Name,
		TeamName:  p.TeamName,
		TechStack: p.TechStack,
		Year:      strconv.Itoa(p.Year()),
	}
}

// IndexPost adds or updates a post in the index.
func (i *Index) IndexPost(p *model.Post) error {
	return i.index.Index(p.ID, toIndexed(p))
}

// Delete removes a post from the index.
func (i *Index) Delete(id string) error {
	return i.index.Delete(id)
}

// Rebuild reindexes every post in one batch.
func (i *Index) Rebuild(ctx context.Context) error {
	all, err := i.posts.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("list posts: %w", err)
	}

	batch := i.index.NewBatch()
	for idx := range all {
		doc := toIndexed(&all[idx])
		if err := batch.Index(doc.ID, doc); err != nil {
			return fmt.Errorf("batch index %s: %w", doc.ID, err)
		}
	}
	if err := i.index.Batch(batch); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Search performs a query with fuzzy matching and highlighting. The
// query string supports quotes, boolean operators, and fuzzy ~.
func (i *Index) Search(queryStr string, limit int) ([]*Result, error) {
	if limit <= 0 {
		limit = 20
	}
	query := bleve.NewQueryStringQuery(queryStr)

	search := bleve.NewSearchRequestOptions(query, limit, 0, false)
	search.Highlight = bleve.NewHighlightWithStyle("html")
	search.Fields = []string{"Title", "Author", "Year"}

	results, err := i.index.Search(search)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}

	var out []*Result
	for _, hit := range results.Hits {
		r := &Result{
			ID:        hit.ID,
			Score:     hit.Score,
			Fragments: hit.Fragments,
		}
		if title, ok := hit.Fields["Title"].(string); ok {
			r.Title = title
		}
		if author, ok := hit.Fields["Author"].(string); ok {
			r.Author = author
		}
		if year, ok := hit.Fields["Year"].(string); ok {
			r.Year = year
		}
		out = append(out, r)
	}
	return out, nil
}

// Count returns the number of indexed posts.
func (i *Index) Count() (uint64, error) {
	return i.index.DocCount()
}

// Close closes the index.
func (i *Index) Close() error {
	return i.index.Close()
}
