package git

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	lhcerrors "github.com/mrz1836/lhc/internal/errors"
	"github.com/mrz1836/lhc/internal/history"
)

// Tag is a tag reference and the commit it points to.
type Tag struct {
	Name string
	// Target is the tagged commit; annotated tags are peeled.
	Target history.ObjectID
	// Annotated is true for tag objects, false for lightweight tags.
	Annotated bool
	// Message is the full annotation, empty for lightweight tags.
	Message string
	Date    time.Time
}

// tagFormat separates fields with NUL and ends each record with an ASCII
// record separator, since annotations span lines.
const tagFormat = "%(refname:strip=2)%00%(objecttype)%00%(objectname)%00%(*objectname)%00%(creatordate:unix)%00%(contents)%1e"

// ListTags returns every tag pointing at a commit, sorted by name.
// Tags on other object types are skipped.
func ListTags(ctx context.Context, workDir string) ([]Tag, error) {
	out, err := runCommand(ctx, workDir, "for-each-ref", "--sort=refname", "--format="+tagFormat, "refs/tags")
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return parseTagList(out)
}

func parseTagList(out string) ([]Tag, error) {
	var tags []Tag
	for _, record := range strings.Split(out, "\x1e") {
		record = strings.TrimLeft(record, "\n")
		if record == "" {
			continue
		}

		fields := strings.SplitN(record, "\x00", 6)
		if len(fields) != 6 {
			return nil, fmt.Errorf("unexpected for-each-ref output %q: %w", record, lhcerrors.ErrGitOperation)
		}

		name, objectType, object, peeled := fields[0], fields[1], fields[2], fields[3]
		tag := Tag{Name: name, Message: strings.TrimSpace(fields[5])}

		switch {
		case objectType == "commit":
			tag.Target = history.ObjectID(object)
		case objectType == "tag" && peeled != "":
			tag.Target = history.ObjectID(peeled)
			tag.Annotated = true
		default:
			continue
		}

		if !tag.Annotated {
			tag.Message = ""
		}
		if seconds, err := strconv.ParseInt(fields[4], 10, 64); err == nil {
			tag.Date = time.Unix(seconds, 0).UTC()
		}

		tags = append(tags, tag)
	}
	return tags, nil
}

// FetchTags fetches every tag from remote so that release computation sees
// tags created elsewhere.
func FetchTags(ctx context.Context, workDir, remote string) error {
	if remote == "" {
		return fmt.Errorf("remote: %w", lhcerrors.ErrEmptyValue)
	}
	if _, err := RunCommand(ctx, workDir, "fetch", "--tags", "--quiet", remote); err != nil {
		return fmt.Errorf("failed to fetch tags from %s: %w", remote, err)
	}
	return nil
}
