package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"reportd/pkg/contracts/domain"
)

func TestQuerySet(t *testing.T) {
	for _, kind := range domain.EntityKinds {
		t.Run(string(kind), func(t *testing.T) {
			queries := QuerySet(kind, 0)
			assert.NotEmpty(t, queries)

			names := map[string]bool{}
			hasRows := false
			for _, q := range queries {
				assert.False(t, names[q.Name], "duplicate query %s", q.Name)
				names[q.Name] = true
				if q.Name == QueryRows {
					hasRows = true
					assert.Equal(t, QueryKindRowList, q.Kind)
					assert.Equal(t, DefaultRowLimit, q.Limit)
					assert.True(t, q.Order.Descending)
				}
			}
			assert.True(t, hasRows)
		})
	}

	assert.Nil(t, QuerySet(domain.EntityKind("unknown"), 10))
	assert.Equal(t, 25, QuerySet(domain.EntityKindPerson, 25)[0].Limit)
}

func TestSummaryQueriesExcludeRowLists(t *testing.T) {
	for _, kind := range domain.EntityKinds {
		for _, q := range SummaryQueries(kind) {
			assert.NotEqual(t, QueryKindRowList, q.Kind)
		}
	}
	assert.Len(t, SummaryQueries(domain.EntityKindTransaction), 3)
}

func TestAggregateQuery_Default(t *testing.T) {
	assert.Equal(t, 0.0, AggregateQuery{Kind: QueryKindSum}.Default().Sum)
	assert.Equal(t, []domain.GroupBucket{}, AggregateQuery{Kind: QueryKindGroupedCount}.Default().Groups)
	assert.Equal(t, []domain.RowRecord{}, AggregateQuery{Kind: QueryKindRowList}.Default().Rows)
	assert.False(t, AggregateQuery{Kind: QueryKindSum}.Default().Failed())
}
