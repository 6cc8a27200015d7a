package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/dmaguire/fairway-lottery/pkg/clients/sheetsclient"
	"github.com/dmaguire/fairway-lottery/pkg/db"
)

// mockPublishTeeSheetStore implements PublishTeeSheetStore for testing
type mockPublishTeeSheetStore struct {
	assignments []db.Assignment
	members     []db.Member
}

func (m *mockPublishTeeSheetStore) GetAssignments(ctx context.Context, date string) ([]db.Assignment, error) {
	return m.assignments, nil
}

func (m *mockPublishTeeSheetStore) GetMembers(ctx context.Context) ([]db.Member, error) {
	return m.members, nil
}

// mockTeeSheetPublisher implements TeeSheetPublisher for testing
type mockTeeSheetPublisher struct {
	spreadsheetID string
	published     *sheetsclient.TeeSheet
}

func (m *mockTeeSheetPublisher) PublishTeeSheet(spreadsheetID string, teeSheet *sheetsclient.TeeSheet) error {
	m.spreadsheetID = spreadsheetID
	m.published = teeSheet
	return nil
}

func TestPublishTeeSheet_GroupsAssignmentsByTeeTime(t *testing.T) {
	store := &mockPublishTeeSheetStore{
		assignments: []db.Assignment{
			{ID: "a-1", RequestID: "req-1", SlotID: "slot-1", Date: "2025-09-03", MemberID: "alice", StartMinute: 8 * 60},
			{ID: "a-2", RequestID: "req-1", SlotID: "slot-1", Date: "2025-09-03", MemberID: "bob", StartMinute: 8 * 60},
			{ID: "a-3", RequestID: "req-2", SlotID: "slot-2", Date: "2025-09-03", MemberID: "carol", StartMinute: 9*60 + 10, PolicyFallback: true},
		},
		members: []db.Member{
			{ID: "alice", FirstName: "Alice", LastName: "Smith"},
			{ID: "bob", FirstName: "Bob", LastName: "Jones"},
			{ID: "carol", FirstName: "Carol", LastName: "Brown"},
		},
	}
	publisher := &mockTeeSheetPublisher{}

	cfg := testConfig()
	cfg.TeeSheetSpreadsheetID = "sheet-123"

	result, err := PublishTeeSheet(context.Background(), store, publisher, cfg, zap.NewNop(), "2025-09-03")
	require.NoError(t, err)

	assert.Equal(t, "sheet-123", publisher.spreadsheetID)
	require.NotNil(t, publisher.published)
	assert.Equal(t, "2025-09-03", publisher.published.Date)

	require.Len(t, publisher.published.Rows, 2)
	first := publisher.published.Rows[0]
	assert.Equal(t, "08:00", first.TeeTime)
	assert.Equal(t, []string{"Alice Smith", "Bob Jones"}, first.Players)
	assert.Empty(t, first.Notes)

	second := publisher.published.Rows[1]
	assert.Equal(t, "09:10", second.TeeTime)
	assert.Equal(t, []string{"Carol Brown"}, second.Players)
	assert.Equal(t, "includes fallback placement", second.Notes)

	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, 3, result.PlayerCount)
}

func TestPublishTeeSheet_RequiresSpreadsheetID(t *testing.T) {
	_, err := PublishTeeSheet(context.Background(), &mockPublishTeeSheetStore{}, &mockTeeSheetPublisher{}, testConfig(), zap.NewNop(), "2025-09-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "teeSheetSpreadsheetID")
}

func TestPublishTeeSheet_NoAssignmentsIsAnError(t *testing.T) {
	cfg := testConfig()
	cfg.TeeSheetSpreadsheetID = "sheet-123"

	_, err := PublishTeeSheet(context.Background(), &mockPublishTeeSheetStore{}, &mockTeeSheetPublisher{}, cfg, zap.NewNop(), "2025-09-03")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "run the lottery first")
}
