package exporter

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"reportd/pkg/contracts/domain"
)

func ptr[T any](v T) *T { return &v }

func TestFormatTabular_TransactionScenario(t *testing.T) {
	rows := []domain.RowRecord{{
		Kind:              domain.EntityKindTransaction,
		ID:                "tx-1",
		Amount:            ptr(50.0),
		CounterpartyName:  "Ada Lovelace",
		CounterpartyEmail: "ada@example.org",
		Status:            "COMPLETED",
		Date:              time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC),
		Method:            "card",
	}}

	got, err := FormatTabular(rows, domain.EntityKindTransaction)
	require.NoError(t, err)

	want := "id,amount,counterpartyName,counterpartyEmail,status,date,method\n" +
		`"tx-1",50,"Ada Lovelace","ada@example.org",COMPLETED,2024-01-15,"card"`
	assert.Equal(t, want, string(got))
	assert.Len(t, strings.Split(string(got), "\n"), 2)
}

func TestFormatTabular_EmptyDatasetIsHeaderOnly(t *testing.T) {
	for _, kind := range domain.EntityKinds {
		t.Run(string(kind), func(t *testing.T) {
			got, err := FormatTabular(nil, kind)
			require.NoError(t, err)

			header, _ := Header(kind)
			assert.Equal(t, strings.Join(header, ","), string(got))
			assert.NotContains(t, string(got), "\n")
		})
	}
}

func TestFormatTabular_PersonValues(t *testing.T) {
	rows := []domain.RowRecord{
		{
			Kind:      domain.EntityKindPerson,
			ID:        "p-1",
			Name:      "Amina",
			Age:       ptr(9),
			Location:  "Kampala",
			Sponsored: ptr(true),
			CreatedAt: time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC),
			Story:     "Loves football",
			Needs:     "School fees",
		},
		{
			Kind:      domain.EntityKindPerson,
			ID:        "p-2",
			Name:      "Joel",
			Sponsored: ptr(false),
			CreatedAt: time.Date(2023, 7, 2, 0, 0, 0, 0, time.UTC),
		},
	}

	got, err := FormatTabular(rows, domain.EntityKindPerson)
	require.NoError(t, err)

	lines := strings.Split(string(got), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, `"p-1","Amina",9,"Kampala",Yes,2023-06-01,"Loves football","School fees"`, lines[1])
	assert.Equal(t, `"p-2","Joel","","",No,2023-07-02,"",""`, lines[2])
}

func TestFormatTabular_SponsorMissingStatus(t *testing.T) {
	rows := []domain.RowRecord{{
		Kind:  domain.EntityKindSponsor,
		ID:    "s-1",
		Name:  "Grace",
		Email: "grace@example.org",
	}}

	got, err := FormatTabular(rows, domain.EntityKindSponsor)
	require.NoError(t, err)

	lines := strings.Split(string(got), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `"s-1","Grace","grace@example.org","","","",""`, lines[1])
}

func TestFormatTabular_PreservesOrder(t *testing.T) {
	rows := []domain.RowRecord{
		{Kind: domain.EntityKindTransaction, ID: "r3"},
		{Kind: domain.EntityKindTransaction, ID: "r1"},
		{Kind: domain.EntityKindTransaction, ID: "r2"},
	}

	got, err := FormatTabular(rows, domain.EntityKindTransaction)
	require.NoError(t, err)

	lines := strings.Split(string(got), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[1], `"r3"`))
	assert.True(t, strings.HasPrefix(lines[2], `"r1"`))
	assert.True(t, strings.HasPrefix(lines[3], `"r2"`))
}

func TestFormatTabular_Stable(t *testing.T) {
	rows := []domain.RowRecord{
		{Kind: domain.EntityKindTransaction, ID: "a", Amount: ptr(1234567.5), Date: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}
	first, err := FormatTabular(rows, domain.EntityKindTransaction)
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := FormatTabular(rows, domain.EntityKindTransaction)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Contains(t, string(first), ",1234567.5,")
}

func TestFormatTabular_Errors(t *testing.T) {
	_, err := FormatTabular(nil, domain.EntityKind("nope"))
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = FormatTabular([]domain.RowRecord{{Kind: domain.EntityKindSponsor, ID: "s"}}, domain.EntityKindPerson)
	assert.True(t, errors.Is(err, ErrKindMismatch))
}
