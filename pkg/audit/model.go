package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// EventDao maps to the 'audit_logs' table in PostgreSQL.
type EventDao struct {
	bun.BaseModel `bun:"table:audit_logs,alias:al"`
	ID            uuid.UUID      `bun:"id,pk,type:uuid"`
	EventType     string         `bun:"event_type,notnull,type:varchar(50)"`
	ResourceType  string         `bun:"resource_type,notnull,type:varchar(50)"`
	ResourceID    string         `bun:"resource_id,notnull,type:varchar(100)"`
	UserID        uuid.UUID      `bun:"user_id,type:uuid"`
	Metadata      map[string]any `bun:"metadata,type:jsonb"`
	CreatedAt     time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

// DecisionDao maps to the 'risk_decisions' table in PostgreSQL.
type DecisionDao struct {
	bun.BaseModel        `bun:"table:risk_decisions,alias:rd"`
	ID                   uuid.UUID       `bun:"id,pk,type:uuid"`
	UserID               uuid.UUID       `bun:"user_id,notnull,type:uuid"`
	WalletID             uuid.UUID       `bun:"wallet_id,type:uuid"`
	Operation            string          `bun:"operation,notnull,type:varchar(20)"`
	Chain                string          `bun:"chain,type:varchar(20)"`
	AmountUSD            decimal.Decimal `bun:"amount_usd,notnull,type:numeric(38,18)"`
	Allow                bool            `bun:"allow,notnull"`
	RequiresManualReview bool            `bun:"requires_manual_review,notnull"`
	RiskLevel            string          `bun:"risk_level,notnull,type:varchar(20)"`
	Rule                 string          `bun:"rule,type:varchar(50)"`
	Reason               string          `bun:"reason,type:text"`
	Suggestion           string          `bun:"suggestion,type:text"`
	CreatedAt            time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}

func toEventDao(e *Event) *EventDao {
	id := e.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &EventDao{
		ID:           id,
		EventType:    string(e.Type),
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		UserID:       e.UserID,
		Metadata:     e.Metadata,
		CreatedAt:    e.CreatedAt,
	}
}

func toDecisionDao(d *Decision) *DecisionDao {
	id := d.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	return &DecisionDao{
		ID:                   id,
		UserID:               d.UserID,
		WalletID:             d.WalletID,
		Operation:            d.Operation,
		Chain:                d.Chain,
		AmountUSD:            d.AmountUSD,
		Allow:                d.Allow,
		RequiresManualReview: d.RequiresManualReview,
		RiskLevel:            d.RiskLevel,
		Rule:                 d.Rule,
		Reason:               d.Reason,
		Suggestion:           d.Suggestion,
		CreatedAt:            d.CreatedAt,
	}
}

func toDecision(dao *DecisionDao) *Decision {
	return &Decision{
		ID:                   dao.ID,
		UserID:               dao.UserID,
		WalletID:             dao.WalletID,
		Operation:            dao.Operation,
		Chain:                dao.Chain,
		AmountUSD:            dao.AmountUSD,
		Allow:                dao.Allow,
		RequiresManualReview: dao.RequiresManualReview,
		RiskLevel:            dao.RiskLevel,
		Rule:                 dao.Rule,
		Reason:               dao.Reason,
		Suggestion:           dao.Suggestion,
		CreatedAt:            dao.CreatedAt,
	}
}
