// Package watchlist fetches the external XML feed of blacklisted account
// ids published by the compliance upstream.
package watchlist

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/ezpay/settlement-service/internal/config"
	"github.com/sirupsen/logrus"
)

// Client handles integration with the watchlist feed
type Client struct {
	url    string
	client *http.Client
	log    *logrus.Logger
}

// NewClient initializes a new watchlist client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url: cfg.WatchlistURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// FetchBlacklistedIDs downloads and parses the feed. Entries that do not
// carry a numeric AccountId are skipped with a warning.
func (c *Client) FetchBlacklistedIDs() ([]int64, error) {
	body, err := c.fetch()
	if err != nil {
		return nil, err
	}
	return c.parseFeed(body)
}

func (c *Client) fetch() ([]byte, error) {
	req, err := http.NewRequest(http.MethodGet, c.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %v", err)
	}

	c.log.Debugf("watchlist XML response: %s", string(body))
	return body, nil
}

func (c *Client) parseFeed(rawBody []byte) ([]int64, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %v", err)
	}

	entries := doc.FindElements("//Watchlist/Entry/AccountId")
	if len(entries) == 0 {
		c.log.Infof("watchlist feed contains no entries")
		return nil, nil
	}

	ids := make([]int64, 0, len(entries))
	for _, el := range entries {
		id, err := strconv.ParseInt(el.Text(), 10, 64)
		if err != nil {
			c.log.Warnf("skipping watchlist entry with non-numeric id %q", el.Text())
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
