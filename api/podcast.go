package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/xeptore/flaw/v8"
	"golang.org/x/sync/errgroup"

	"github.com/dmarkez/muza/config"
	"github.com/dmarkez/muza/errutil"
	"github.com/dmarkez/muza/mathutil"
	"github.com/dmarkez/muza/ratelimit"
)

type Podcast struct {
	ID          int64   `json:"id"`
	Name        string  `json:"nombre"`
	Description *string `json:"descripcion,omitempty"`
}

type Episode struct {
	ID          int64   `json:"id"`
	Title       string  `json:"titulo"`
	Duration    *int    `json:"duracion,omitempty"`
	PublishedAt *string `json:"fechaPublicacion,omitempty"`
}

func (c *Client) FollowedPodcasts(ctx context.Context, userID int64) ([]Podcast, error) {
	body, err := c.followedList(ctx, userID, "podcastsSeguidos")
	if nil != err {
		return nil, err
	}
	if nil == body {
		return nil, nil
	}

	var podcasts []Podcast
	if err := json.Unmarshal(body, &podcasts); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, flaw.From(fmt.Errorf("failed to decode followed podcasts response: %v", err)).Append(flawP)
	}
	return podcasts, nil
}

const episodesPageSize = 50

// Episodes collects every episode of a podcast. The first page reveals the
// total; remaining pages are fetched concurrently and stitched back in order.
func (c *Client) Episodes(ctx context.Context, podcastID int64) ([]Episode, error) {
	first, total, err := c.episodesPage(ctx, podcastID, 0)
	if nil != err {
		return nil, err
	}

	pages := mathutil.CeilInts(total, episodesPageSize)
	if pages <= 1 {
		return first, nil
	}

	rest := make([][]Episode, pages-1)
	wg, fetchCtx := errgroup.WithContext(ctx)
	wg.SetLimit(ratelimit.EpisodeFetchConcurrency)
	for page := 1; page < pages; page++ {
		wg.Go(func() error {
			pageEpisodes, _, err := c.episodesPage(fetchCtx, podcastID, page)
			if nil != err {
				return err
			}
			rest[page-1] = pageEpisodes
			return nil
		})
	}
	if err := wg.Wait(); nil != err {
		return nil, err
	}

	episodes := first
	for _, pageEpisodes := range rest {
		episodes = append(episodes, pageEpisodes...)
	}
	return episodes, nil
}

func (c *Client) episodesPage(ctx context.Context, podcastID int64, page int) ([]Episode, int, error) {
	reqURL, err := url.JoinPath(c.baseURL, "podcasts", strconv.FormatInt(podcastID, 10), "episodios")
	if nil != err {
		flawP := flaw.P{"err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, 0, flaw.From(fmt.Errorf("failed to build episodes URL: %v", err)).Append(flawP)
	}

	query := make(url.Values, 2)
	query.Set("limit", strconv.Itoa(episodesPageSize))
	query.Set("offset", strconv.Itoa(page*episodesPageSize))
	reqURL += "?" + query.Encode()

	body, err := c.get(ctx, reqURL, config.GetEpisodesRequestTimeout)
	if nil != err {
		return nil, 0, err
	}

	var respBody struct {
		Total    int       `json:"total"`
		Episodes []Episode `json:"episodios"`
	}
	if err := json.Unmarshal(body, &respBody); nil != err {
		flawP := flaw.P{"response_body": string(body), "err_debug_tree": errutil.Tree(err).FlawP()}
		return nil, 0, flaw.From(fmt.Errorf("failed to decode episodes response: %v", err)).Append(flawP)
	}
	return respBody.Episodes, respBody.Total, nil
}
