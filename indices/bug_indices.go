package indices

import (
	"context"
	"fmt"

	"bugtrack/client/es"
	"bugtrack/domain"

	"github.com/fundwit/go-commons/types"
	"github.com/sirupsen/logrus"
)

var (
	BugIndexName = "bugs"
)

type BugDocument struct {
	domain.Bug
}

type BatchActionError map[types.ID]error

func (e BatchActionError) Error() string {
	return fmt.Sprintf("%v", map[types.ID]error(e))
}

func IndexBugs(bugs []domain.Bug) error {
	docs := make([]BugDocument, 0, len(bugs))
	for _, b := range bugs {
		docs = append(docs, BugDocument{Bug: b})
	}

	if err := saveBugDocuments(docs); err != nil {
		return err
	}
	return nil
}

func saveBugDocuments(docs []BugDocument) BatchActionError {
	errs := BatchActionError{}

	for _, doc := range docs {
		if err := es.IndexFunc(BugIndexName, doc.ID, doc, context.Background()); err != nil {
			errs[doc.ID] = err
			logrus.Warnf("index bug %d %s\n", doc.ID, err)
		} else {
			logrus.Infof("index bug %d successfully\n", doc.ID)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

func DeleteBugIndex(id types.ID) error {
	if err := es.DeleteDocumentByIdFunc(BugIndexName, id, context.Background()); err != nil {
		logrus.Warnf("delete bug index %d %s\n", id, err)
		return err
	}
	return nil
}
