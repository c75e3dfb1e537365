package maimemo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// FindNotepad looks up the notepad whose title equals the client's title.
//
// It lists the account's notepads in one call (limit=0 and offset=0 ask the
// server for everything) and returns the ID of the first exact match. If no
// title matches, found is false and err is nil. A failed request, a non-2xx
// status, an undecodable body, a body with success=false or one without a
// notepads list is returned as *TransportError so callers can tell
// "no notepad" apart from "could not ask".
func (c *Client) FindNotepad(ctx context.Context) (id string, found bool, err error) {
	query := url.Values{"limit": {"0"}, "offset": {"0"}}

	var listResp ListNotepadsResponse
	err = c.doRequest(ctx, http.MethodGet, "/notepads", query, nil, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&listResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", false, &TransportError{Op: "listing notepads", Err: err}
	}
	if !listResp.Success {
		return "", false, &TransportError{Op: "listing notepads", Err: ErrUnsuccessful}
	}
	if listResp.Data.Notepads == nil {
		return "", false, &TransportError{Op: "listing notepads", Err: fmt.Errorf("%w: missing notepads list", ErrMalformed)}
	}

	for _, np := range listResp.Data.Notepads {
		if np.Title == c.title {
			return np.ID, true, nil
		}
	}
	return "", false, nil
}

// CreateNotepad creates a published notepad with the client's title and a
// placeholder content, and returns its server-assigned ID.
//
// Every failure, including a body with success=false or without an ID, is
// returned as *CreateError. A nil error always comes with a non-empty ID.
func (c *Client) CreateNotepad(ctx context.Context) (string, error) {
	data, err := json.Marshal(NewNotepadRequest(c.title, placeholderContent))
	if err != nil {
		return "", &CreateError{Title: c.title, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	var createResp NotepadResponse
	err = c.doRequest(ctx, http.MethodPost, "/notepads", nil, data, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&createResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", &CreateError{Title: c.title, Err: err}
	}

	if !createResp.Success {
		return "", &CreateError{Title: c.title, Err: ErrUnsuccessful}
	}
	if createResp.Data.Notepad == nil || createResp.Data.Notepad.ID == "" {
		return "", &CreateError{Title: c.title, Err: fmt.Errorf("%w: missing notepad id", ErrMalformed)}
	}

	c.logger.Info("created notepad %q (id %s)", c.title, createResp.Data.Notepad.ID)
	return createResp.Data.Notepad.ID, nil
}

// ListWords returns the words of the notepad with the given ID, in server order.
// Items that are not of type WORD, or that have no word, are skipped.
//
// With the default TreatAsEmpty policy a failed read (request error, non-2xx,
// malformed body or missing fields) is logged and reported as an empty list with
// a nil error. This is lossy on purpose: a sync that cannot read the notepad
// still writes the caller's words, at the risk of writing existing ones again.
// With Propagate the failure is returned as *TransportError.
func (c *Client) ListWords(ctx context.Context, id string) ([]string, error) {
	words, err := c.listWords(ctx, id)
	if err == nil {
		return words, nil
	}

	terr := &TransportError{Op: "reading notepad " + id, Err: err}
	if c.readPolicy == Propagate {
		return nil, terr
	}
	// context cancellation is never a "no words" answer
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil, terr
	}
	c.logger.Warn("%v; treating notepad as empty", terr)
	return []string{}, nil
}

func (c *Client) listWords(ctx context.Context, id string) ([]string, error) {
	var getResp NotepadResponse
	err := c.doRequest(ctx, http.MethodGet, "/notepads/"+url.PathEscape(id), nil, nil, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&getResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if getResp.Data.Notepad == nil {
		return nil, fmt.Errorf("%w: missing notepad", ErrMalformed)
	}
	if getResp.Data.Notepad.List == nil {
		return nil, fmt.Errorf("%w: missing notepad list", ErrMalformed)
	}

	words := make([]string, 0, len(getResp.Data.Notepad.List))
	for _, item := range getResp.Data.Notepad.List {
		if item.IsWord() && item.Word != "" {
			words = append(words, item.Word)
		}
	}
	return words, nil
}

// UpdateNotepad replaces the content of the notepad with the given ID.
//
// The write is a full replace, not a patch: content must be the complete
// comma-separated word list. The returned bool is the body's success flag.
// A failed request, a non-2xx status or an undecodable body is returned as
// *UpdateError; callers that want the old "false on failure" behaviour can
// check errors.As and discard the error themselves.
func (c *Client) UpdateNotepad(ctx context.Context, id, content string) (bool, error) {
	data, err := json.Marshal(NewNotepadRequest(c.title, content))
	if err != nil {
		return false, &UpdateError{ID: id, Err: fmt.Errorf("marshaling request: %w", err)}
	}

	var updateResp UpdateNotepadResponse
	err = c.doRequest(ctx, http.MethodPost, "/notepads/"+url.PathEscape(id), nil, data, func(resp *http.Response) error {
		if err := json.NewDecoder(resp.Body).Decode(&updateResp); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
		return nil
	})
	if err != nil {
		return false, &UpdateError{ID: id, Err: err}
	}

	if !updateResp.Success {
		c.logger.Warn("update of notepad %s was not accepted (success=false)", id)
	}
	return updateResp.Success, nil
}
