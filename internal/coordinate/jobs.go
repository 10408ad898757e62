package coordinate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/ternarybob/coordex/internal/models"
)

// jobPage mirrors one response of the jobs listing. Items stays raw so a page
// without an items key can be told apart from a page with an empty list.
type jobPage struct {
	Items         json.RawMessage `json:"items"`
	NextPageToken string          `json:"nextPageToken"`
}

// jobIterator is a pull-based cursor over the paginated jobs listing. It
// holds only the current page; the next page is fetched when the current one
// is exhausted.
type jobIterator struct {
	ctx    context.Context
	client *Client
	teamID string

	page      []models.Job
	idx       int
	pageToken string
	started   bool
	done      bool
	err       error
	current   *models.Job
}

// Next advances to the next job, fetching listing pages on demand, and
// reports whether one is available.
func (it *jobIterator) Next() bool {
	for {
		if it.err != nil || it.done {
			return false
		}

		if it.idx < len(it.page) {
			it.current = &it.page[it.idx]
			it.idx++
			return true
		}

		// A missing cursor after the first page means the listing is complete.
		if it.started && it.pageToken == "" {
			it.done = true
			return false
		}

		if err := it.fetchPage(); err != nil {
			it.err = err
			return false
		}
	}
}

func (it *jobIterator) fetchPage() error {
	params := url.Values{}
	params.Set("maxResults", strconv.Itoa(it.client.pageSize))
	params.Set("fields", jobListFields)
	if it.pageToken != "" {
		params.Set("pageToken", it.pageToken)
	}

	var page jobPage
	path := fmt.Sprintf("/teams/%s/jobs", url.PathEscape(it.teamID))
	if err := it.client.get(it.ctx, path, params, &page); err != nil {
		return err
	}

	it.started = true
	it.pageToken = page.NextPageToken
	it.page = nil
	it.idx = 0

	// The API signals end-of-stream with a response carrying no items key at
	// all, sometimes alongside a cursor. An empty-but-present list is an
	// ordinary page.
	if page.Items == nil {
		it.done = true
		return nil
	}

	var jobs []models.Job
	if err := json.Unmarshal(page.Items, &jobs); err != nil {
		return fmt.Errorf("failed to parse job page: %w", err)
	}

	it.page = jobs
	return nil
}

// Job returns the job Next advanced to.
func (it *jobIterator) Job() *models.Job {
	return it.current
}

// Err returns the error that stopped the walk, if any.
func (it *jobIterator) Err() error {
	return it.err
}
