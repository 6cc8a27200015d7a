package sheetsclient

import (
	"fmt"
	"time"

	"google.golang.org/api/sheets/v4"
)

// TeeSheetRow represents one tee time on the published sheet
type TeeSheetRow struct {
	TeeTime string   // Format: "15:04"
	Players []string // Full names, in seat order
	Notes   string   // e.g. policy fallback marker
}

// TeeSheet represents the complete published tee sheet for one date
type TeeSheet struct {
	Date string // Format: "2006-01-02"
	Rows []TeeSheetRow
}

// PublishTeeSheet publishes a tee sheet to Google Sheets, one tab per
// date titled like "Sat Sep 06 2025". The tab is created if missing and
// fully overwritten if it exists; the sheet is a projection of the
// database, never the source of truth.
func (c *Client) PublishTeeSheet(spreadsheetID string, teeSheet *TeeSheet) error {
	tabTitle, err := teeSheetTabTitle(teeSheet.Date)
	if err != nil {
		return fmt.Errorf("failed to generate tab title: %w", err)
	}

	exists, err := c.hasSheet(spreadsheetID, tabTitle)
	if err != nil {
		return err
	}
	if !exists {
		if _, err := c.CreateSheet(spreadsheetID, tabTitle); err != nil {
			return fmt.Errorf("failed to create tab: %w", err)
		}
	}

	// Find the widest party so every row gets the same column count
	maxPlayers := 0
	for _, row := range teeSheet.Rows {
		if len(row.Players) > maxPlayers {
			maxPlayers = len(row.Players)
		}
	}

	header := []interface{}{"Tee time"}
	for i := 0; i < maxPlayers; i++ {
		header = append(header, fmt.Sprintf("Player %d", i+1))
	}
	header = append(header, "Notes")

	allRows := [][]interface{}{header}
	for _, row := range teeSheet.Rows {
		sheetRow := []interface{}{row.TeeTime}
		for i := 0; i < maxPlayers; i++ {
			if i < len(row.Players) {
				sheetRow = append(sheetRow, row.Players[i])
			} else {
				sheetRow = append(sheetRow, "")
			}
		}
		sheetRow = append(sheetRow, row.Notes)
		allRows = append(allRows, sheetRow)
	}

	valueRange := &sheets.ValueRange{
		Values: allRows,
	}

	_, err = c.service.Spreadsheets.Values.Update(
		spreadsheetID,
		fmt.Sprintf("%s!A1", tabTitle),
		valueRange,
	).ValueInputOption("RAW").Do()
	if err != nil {
		return fmt.Errorf("failed to write tee sheet: %w", err)
	}

	return nil
}

// teeSheetTabTitle formats the tab title for a tee sheet date
func teeSheetTabTitle(date string) (string, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return "", fmt.Errorf("invalid date: %w", err)
	}
	return d.Format("Mon Jan 02 2006"), nil
}
