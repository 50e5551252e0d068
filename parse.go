package skemac

import (
	"errors"
	"io"

	eng "github.com/reoring/skemac/internal/engine"
)

// DecodeFrom consumes tokens from the Source and builds the generic value
// (map[string]any, []any, string, bool, nil and json.Number or float64 per the
// Source's NumberMode) that compiled validators check. The last opt wins.
func DecodeFrom(src Source, opts ...ParseOpt) (any, error) {
	var opt ParseOpt
	if len(opts) > 0 {
		opt = opts[len(opts)-1]
	}
	enforced := enforce(EngineTokenSource(src), opt)
	var (
		v   any
		err error
	)
	switch src.NumberMode() {
	case NumberFloat64:
		v, err = eng.DecodeAnyFromSourceAsFloat64(enforced)
	default:
		v, err = eng.DecodeAnyFromSource(enforced)
	}
	if err != nil {
		return nil, toIssues(err, src.Location())
	}
	return v, nil
}

// StreamDecode decodes a JSON value from an io.Reader. When MaxBytes is set it
// enforces the size cap up front.
func StreamDecode(r io.Reader, opts ...ParseOpt) (any, error) {
	if len(opts) > 0 && opts[len(opts)-1].MaxBytes > 0 {
		limit := opts[len(opts)-1].MaxBytes
		data, err := io.ReadAll(io.LimitReader(r, limit+1))
		if err != nil {
			return nil, singleIssue(CodeParseError, err.Error())
		}
		if int64(len(data)) > limit {
			return nil, singleIssue(CodeTruncated, "max bytes exceeded")
		}
		return DecodeFrom(JSONBytes(data), opts...)
	}
	return DecodeFrom(JSONReader(r), opts...)
}

func toIssues(err error, offset int64) Issues {
	if err == nil {
		return nil
	}
	if ii, ok := AsIssues(err); ok {
		return ii
	}
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return AppendIssues(nil, Issue{Code: ie.Code, Path: ie.Path, Message: ie.Message, Category: CategoryParse, Offset: offset})
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return AppendIssues(nil, Issue{Path: "/", Code: CodeParseError, Message: err.Error(), Category: CategoryParse, Cause: err, Offset: offset})
}

func singleIssue(code, msg string) Issues {
	return AppendIssues(nil, Issue{Path: "/", Code: code, Message: msg, Category: CategoryParse, Offset: -1})
}
