package search_test

import (
	"context"
	"testing"

	"bugtrack/client/es"
	"bugtrack/domain"
	"bugtrack/indices"
	"bugtrack/indices/search"
	"bugtrack/testinfra"

	"github.com/fundwit/go-commons/types"
	. "github.com/onsi/gomega"
)

func TestSearchBugs(t *testing.T) {
	RegisterTestingT(t)

	t.Run("query should carry the requested filters", func(t *testing.T) {
		var gotIndex string
		var gotQuery interface{}
		es.SearchFunc = func(index string, query interface{}, ctx context.Context) (*es.ESSearchResult, error) {
			gotIndex = index
			gotQuery = query
			return &es.ESSearchResult{Hits: es.ESSearchHits{Hits: []es.ESSearchHit{
				{Id: "123", Source: es.Source(`{"id": "123", "projectId": "100", "title": "login crash", "status": "open"}`)},
			}}}, nil
		}
		defer func() { es.SearchFunc = es.Search }()

		projectId := types.ID(100)
		result, err := search.SearchBugs(search.BugSearchQuery{
			Query: "login", ProjectID: &projectId, Status: domain.BugStatusOpen}, testinfra.BuildSecCtx(10))
		Expect(err).To(BeNil())
		Expect(gotIndex).To(Equal(indices.BugIndexName))

		root := gotQuery.(es.H)
		filters := root["query"].(es.H)["bool"].(es.H)["filter"].([]es.H)
		Expect(len(filters)).To(Equal(3))
		Expect(filters[0]).To(Equal(es.H{"match": es.H{"title": es.H{"query": "login", "operator": "AND"}}}))
		Expect(filters[1]).To(Equal(es.H{"term": es.H{"projectId": &projectId}}))
		Expect(filters[2]).To(Equal(es.H{"term": es.H{"status": "open"}}))

		Expect(len(result)).To(Equal(1))
		Expect(result[0].ID).To(Equal(types.ID(123)))
		Expect(result[0].Title).To(Equal("login crash"))
	})

	t.Run("illegal status filter should be rejected before any search", func(t *testing.T) {
		invoked := false
		es.SearchFunc = func(index string, query interface{}, ctx context.Context) (*es.ESSearchResult, error) {
			invoked = true
			return &es.ESSearchResult{}, nil
		}
		defer func() { es.SearchFunc = es.Search }()

		_, err := search.SearchBugs(search.BugSearchQuery{Status: "Open"}, testinfra.BuildSecCtx(10))
		Expect(err.Error()).To(Equal("Invalid status value"))
		Expect(invoked).To(BeFalse())
	})
}
