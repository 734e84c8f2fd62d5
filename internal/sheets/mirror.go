package sheets

import (
	"context"
	"fmt"

	sheetsv4 "google.golang.org/api/sheets/v4"

	"velo-registration/internal/models"
	"velo-registration/internal/util"
)

// Header is the first row of the participants tab.
var Header = []interface{}{"Vardas", "Pavardė", "El. paštas", "Klubas", "Lytis", "Registruota"}

func (c *Client) Name() string { return "sheets" }

// Mirror appends one row for p to the participants tab.
func (c *Client) Mirror(ctx context.Context, p models.Participant) error {
	return c.appendRow(ctx, c.Row(p))
}

func (c *Client) Row(p models.Participant) []interface{} {
	return []interface{}{
		p.FirstName,
		p.LastName,
		p.Email,
		p.Club,
		p.Gender,
		util.LocalTimestamp(p.CreatedAt, c.loc),
	}
}

// EnsureHeaders writes Header into the first row when the tab is empty.
func (c *Client) EnsureHeaders(ctx context.Context) (bool, error) {
	values, err := c.readRange(ctx, "A1:F1")
	if err != nil {
		return false, err
	}
	if len(values) > 0 && len(values[0]) > 0 {
		return false, nil
	}
	return true, c.updateRange(ctx, "A1:F1", Header)
}

func (c *Client) rangeOf(a1 string) string {
	return fmt.Sprintf("%s!%s", c.tab, a1)
}

func (c *Client) readRange(ctx context.Context, a1 string) ([][]interface{}, error) {
	resp, err := c.srv.Spreadsheets.Values.Get(c.spreadsheetID, c.rangeOf(a1)).Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (c *Client) appendRow(ctx context.Context, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Append(c.spreadsheetID, c.rangeOf("A:F"), vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	return err
}

func (c *Client) updateRange(ctx context.Context, a1 string, row []interface{}) error {
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{row}}
	_, err := c.srv.Spreadsheets.Values.Update(c.spreadsheetID, c.rangeOf(a1), vr).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	return err
}
