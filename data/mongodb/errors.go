package mongodb

import (
	"context"
	"errors"

	"github.com/studyhub/collab/data"
	"go.mongodb.org/mongo-driver/mongo"
)

// Server error codes that map onto the store taxonomy.
var (
	permissionCodes  = []int{13}
	authCodes        = []int{18}
	invalidCodes     = []int{2, 121}
	unavailableCodes = []int{91, 189, 11600, 11602, 10107, 13435}
	transientLabels  = []string{"RetryableWriteError", "TransientTransactionError"}
)

// classify wraps a driver error in a *data.Error.
func classify(op string, err error) error {
	var de *data.Error
	if errors.As(err, &de) {
		return err
	}
	return data.NewError(code(err), op, err)
}

func code(err error) data.Code {
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		return data.CodeNotFound
	case errors.Is(err, context.DeadlineExceeded), mongo.IsTimeout(err):
		return data.CodeDeadlineExceeded
	case errors.Is(err, context.Canceled):
		return data.CodeUnavailable
	case mongo.IsNetworkError(err):
		return data.CodeNetwork
	}

	var se mongo.ServerError
	if errors.As(err, &se) {
		switch {
		case hasCode(se, permissionCodes):
			return data.CodePermissionDenied
		case hasCode(se, authCodes):
			return data.CodeUnauthenticated
		case hasCode(se, invalidCodes):
			return data.CodeInvalidArgument
		case hasCode(se, unavailableCodes), hasLabel(se, transientLabels):
			return data.CodeUnavailable
		}
	}

	return data.Classify(err)
}

func hasCode(se mongo.ServerError, codes []int) bool {
	for _, c := range codes {
		if se.HasErrorCode(c) {
			return true
		}
	}
	return false
}

func hasLabel(se mongo.ServerError, labels []string) bool {
	for _, l := range labels {
		if se.HasErrorLabel(l) {
			return true
		}
	}
	return false
}
