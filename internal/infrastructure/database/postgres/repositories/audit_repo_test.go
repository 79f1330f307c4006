//go:build integration

package repositories_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domaincls "github.com/turtacn/HSCode-Intelligence/internal/domain/classification"
	"github.com/turtacn/HSCode-Intelligence/internal/infrastructure/database/postgres/repositories"
	"github.com/turtacn/HSCode-Intelligence/pkg/types/common"
)

func TestAuditRepository_AppendAndListByCase(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewAuditRepository(pool, nil)
	ctx := context.Background()

	caseID := common.NewID()
	base := time.Now().UTC().Truncate(time.Microsecond)

	payload, err := json.Marshal(map[string]string{"hs6": "090121"})
	require.NoError(t, err)

	first := domaincls.AuditEntry{
		ID:         common.NewID(),
		CaseID:     caseID,
		Event:      domaincls.EventCaseCreated,
		Payload:    payload,
		RecordedAt: base,
	}
	second := domaincls.AuditEntry{
		ID:         common.NewID(),
		CaseID:     caseID,
		Event:      domaincls.EventCaseClassified,
		Payload:    payload,
		RecordedAt: base.Add(time.Second),
	}

	// Append out of order; ListByCase must return chronological order.
	require.NoError(t, repo.Append(ctx, second))
	require.NoError(t, repo.Append(ctx, first))

	entries, err := repo.ListByCase(ctx, caseID)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, domaincls.EventCaseCreated, entries[0].Event)
	assert.Equal(t, domaincls.EventCaseClassified, entries[1].Event)
	assert.JSONEq(t, string(payload), string(entries[0].Payload))
}

func TestAuditRepository_ListByCase_EmptyTrail(t *testing.T) {
	pool := startPostgres(t)
	repo := repositories.NewAuditRepository(pool, nil)

	entries, err := repo.ListByCase(context.Background(), common.NewID())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

//Personal.AI order the ending
