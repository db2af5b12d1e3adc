package search

import (
	"encoding/json"
	"fmt"

	"bugtrack/client/es"
	"bugtrack/common"
	"bugtrack/domain"
	"bugtrack/indices"
	"bugtrack/session"

	"github.com/fundwit/go-commons/types"
)

var (
	SearchBugsFunc = SearchBugs
)

type BugSearchQuery struct {
	Query     string    `form:"q"`
	ProjectID *types.ID `form:"projectId"`
	Status    string    `form:"status"`
}

func SearchBugs(q BugSearchQuery, sec *session.Session) ([]domain.Bug, error) {
	filters := make([]es.H, 0, 3)
	if q.Query != "" {
		filters = append(filters, es.H{"match": es.H{"title": es.H{"query": q.Query, "operator": "AND"}}})
	}
	if q.ProjectID != nil {
		filters = append(filters, es.H{"term": es.H{"projectId": q.ProjectID}})
	}
	if q.Status != "" {
		if err := domain.CheckEnum("status", q.Status); err != nil {
			return nil, err
		}
		filters = append(filters, es.H{"term": es.H{"status": q.Status}})
	}

	sorts := []es.H{{"createTime": es.H{"order": "desc"}}}
	root := es.H{"bool": es.H{"filter": filters}}
	r, err := es.SearchFunc(indices.BugIndexName, es.H{"size": 10000, "query": root, "sort": sorts},
		session.ContextOf(sec))
	if err != nil {
		return nil, err
	}

	bugs := make([]domain.Bug, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		b := domain.Bug{}
		if err := json.NewDecoder(common.StringReader(string(hit.Source))).Decode(&b); err != nil {
			return nil, fmt.Errorf(string(hit.Source))
		}
		bugs = append(bugs, b)
	}
	return bugs, nil
}
