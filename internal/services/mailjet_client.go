package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/civic-action/platform/internal/config"
	"go.uber.org/zap"
)

// Mailjet contact list actions.
const (
	MailjetActionAddNoForce = "addnoforce"
	MailjetActionRemove     = "remove"
	MailjetActionUnsub      = "unsub"
)

// MailjetClient manages one contact list through the Mailjet REST API.
type MailjetClient struct {
	baseURL    string
	apiKey     string
	secretKey  string
	listID     string
	httpClient *http.Client
	log        *zap.Logger
}

func NewMailjetClient(cfg *config.Config, log *zap.Logger) *MailjetClient {
	return &MailjetClient{
		baseURL:   strings.TrimRight(cfg.MailjetBaseURL, "/"),
		apiKey:    cfg.MailjetAPIKey,
		secretKey: cfg.MailjetSecretKey,
		listID:    cfg.MailjetContactListID,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		log: log,
	}
}

type ContactListMembership struct {
	ListID  int  `json:"ListID"`
	IsUnsub bool `json:"IsUnsub"`
}

func (c *MailjetClient) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.apiKey, c.secretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("mailjet unavailable: %w", err)
	}
	return resp, nil
}

// ManageContact applies one action to the email on the configured list.
func (c *MailjetClient) ManageContact(ctx context.Context, email, action string) error {
	path := fmt.Sprintf("/contactslist/%s/managecontact", url.PathEscape(c.listID))
	resp, err := c.do(ctx, http.MethodPost, path, map[string]string{
		"Action": action,
		"Email":  email,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("mailjet %s returned %d: %s", action, resp.StatusCode, string(b))
	}
	return nil
}

func (c *MailjetClient) Subscribe(ctx context.Context, email string) error {
	return c.ManageContact(ctx, email, MailjetActionAddNoForce)
}

// RemoveAndUnsubscribe drops the contact from the list and marks it
// unsubscribed. Both calls are attempted; failures are logged, not returned.
func (c *MailjetClient) RemoveAndUnsubscribe(ctx context.Context, email string) {
	for _, action := range []string{MailjetActionRemove, MailjetActionUnsub} {
		if err := c.ManageContact(ctx, email, action); err != nil {
			c.log.Warn("mailjet contact update failed", zap.String("action", action), zap.Error(err))
		}
	}
}

// ContactLists returns the lists the contact belongs to. Unknown contacts
// have none.
func (c *MailjetClient) ContactLists(ctx context.Context, email string) ([]ContactListMembership, error) {
	resp, err := c.do(ctx, http.MethodGet, "/contact/"+url.PathEscape(email)+"/getcontactslists", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("mailjet returned %d: %s", resp.StatusCode, string(b))
	}

	var result struct {
		Data []ContactListMembership `json:"Data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return result.Data, nil
}

// IsSubscribed reports whether the contact is on the configured list and
// not unsubscribed.
func (c *MailjetClient) IsSubscribed(ctx context.Context, email string) (bool, error) {
	lists, err := c.ContactLists(ctx, email)
	if err != nil {
		return false, err
	}
	return subscribedTo(lists, c.listID), nil
}

func subscribedTo(lists []ContactListMembership, listID string) bool {
	id, err := strconv.Atoi(listID)
	if err != nil {
		return false
	}
	for _, l := range lists {
		if l.ListID == id && !l.IsUnsub {
			return true
		}
	}
	return false
}
