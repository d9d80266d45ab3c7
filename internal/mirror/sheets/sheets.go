// Package sheets mirrors values into the first sheet of a Google spreadsheet.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"ledger/internal/mirror"

	"google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

var _ mirror.Store = (*Client)(nil)

// Client is a label-addressed view of a spreadsheet's first sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Credentials selects a service account key. JSON wins over File.
type Credentials struct {
	JSON string
	File string
}

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, spreadsheetID string, creds Credentials, opts ...option.ClientOption) (*Client, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}

	var credentialsJSON []byte
	switch {
	case creds.JSON != "":
		credentialsJSON = []byte(creds.JSON)
	case creds.File != "":
		b, err := os.ReadFile(creds.File)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	}
	if credentialsJSON != nil {
		opts = append([]option.ClientOption{
			option.WithCredentialsJSON(credentialsJSON),
			option.WithScopes(gsheet.SpreadsheetsScope),
		}, opts...)
	}

	svc, err := gsheet.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return &Client{svc: svc, spreadsheetID: spreadsheetID}, nil
}

// Get returns the value below label in the first sheet.
func (c *Client) Get(ctx context.Context, label string) (string, error) {
	sheet, rows, err := c.readFirstSheet(ctx)
	if err != nil {
		return "", err
	}
	cell, err := mirror.Locate(rows, label)
	if err != nil {
		return "", fmt.Errorf("sheet %s: %w", sheet, err)
	}
	return mirror.ValueAt(rows, cell.Below())
}

// Set writes value below label in the first sheet. Values are entered as if
// typed, so numbers stay numeric.
func (c *Client) Set(ctx context.Context, label, value string) error {
	sheet, rows, err := c.readFirstSheet(ctx)
	if err != nil {
		return err
	}
	cell, err := mirror.Locate(rows, label)
	if err != nil {
		return fmt.Errorf("sheet %s: %w", sheet, err)
	}

	rng := cell.Below().A1(sheet)
	vr := &gsheet.ValueRange{Values: [][]any{{value}}}
	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (c *Client) readFirstSheet(ctx context.Context) (string, [][]any, error) {
	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	if len(meta.Sheets) == 0 || meta.Sheets[0].Properties == nil || meta.Sheets[0].Properties.Title == "" {
		return "", nil, errors.New("spreadsheet has no sheets")
	}
	sheet := meta.Sheets[0].Properties.Title

	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, quote(sheet)).Context(ctx).Do()
	if err != nil {
		return "", nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return sheet, resp.Values, nil
}

func quote(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}
