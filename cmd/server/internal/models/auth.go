package models

import (
	"context"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/config"
	"github.com/disclosurehub/disclosure-api/disclosure-api/internal/types"
)

type Auth struct {
	Token string // argon2id hash
	Name  string // will be logged nonsensitive
	Email string
	Model
	Kind   types.ActorKind `gorm:"type:text"`
	Active datatypes.Null[bool]
}

func (Auth) TableName() string {
	return "auth"
}

func (a Auth) GetID() uuid.UUID {
	return a.ID
}

func (a *Auth) Actor() types.Actor {
	return types.Actor{
		Kind:  a.Kind,
		ID:    a.ID,
		Name:  a.Name,
		Email: a.Email,
	}
}

func authFromActor(actor config.Actor, kind types.ActorKind) (*Auth, error) {
	hash, err := argon2id.CreateHash(actor.APIKey.Token, argon2id.DefaultParams)
	if err != nil {
		return nil, fmt.Errorf("error creating hash for api key: %w", err)
	}

	actorID, err := uuid.Parse(actor.ID)
	if err != nil {
		return nil, fmt.Errorf("error parsing actor id: %w", err)
	}

	return &Auth{
		Model: Model{
			ID: actorID,
		},
		Token:  hash,
		Name:   actor.Name,
		Email:  actor.Email,
		Kind:   kind,
		Active: NewNull(actor.APIKey.Active),
	}, nil
}

// Config is the authoritative set of actors
//
// 1. Upsert auth rows for every configured actor
// 2. Disable keys not currently contained in the config
// 3. Ensure ledger rows exist for researchers and organizations without
//    clobbering accumulated counters
func LoadActorsFromConfig(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	ctx, span := tracer.Start(ctx, "LoadActorsFromConfig")
	defer span.End()

	db = db.WithContext(ctx)

	total := len(cfg.Researchers) + len(cfg.Organizations) + len(cfg.Admins)

	keysToUpsert := make([]*Auth, 0, total)
	keysInConfig := make([]uuid.UUID, 0, total)

	add := func(actors []config.Actor, kind types.ActorKind) error {
		for _, actor := range actors {
			newModel, err := authFromActor(actor, kind)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, "error building auth for actor")
				span.SetAttributes(attribute.String("failedActor", actor.ID))
				return err
			}

			keysToUpsert = append(keysToUpsert, newModel)
			keysInConfig = append(keysInConfig, newModel.ID)
		}

		return nil
	}

	if err := add(cfg.Researchers, types.ActorKindResearcher); err != nil {
		return err
	}
	if err := add(cfg.Organizations, types.ActorKindOrganization); err != nil {
		return err
	}
	if err := add(cfg.Admins, types.ActorKindAdmin); err != nil {
		return err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		//nolint:govet // shadow: intentionally shadow ctx and span to avoid using the incorrect one.
		ctx, span := tracer.Start(ctx, "LoadActorsFromConfig/Transaction")
		defer span.End()

		tx = tx.WithContext(ctx)

		if len(keysToUpsert) != 0 {
			span.AddEvent("upserting defined auths")
			result := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(keysToUpsert)
			if result.Error != nil {
				span.RecordError(result.Error)
				span.SetStatus(codes.Error, "failed to upsert defined auths")
				return fmt.Errorf("failed to upsert defined auths: %w", result.Error)
			}
			if result.RowsAffected != int64(total) {
				span.AddEvent("updated rows did not equal configured actor count")
				span.SetAttributes(
					attribute.Int64("rowsAffected", result.RowsAffected),
					attribute.Int64("actors", int64(total)),
				)
			}
		} else {
			span.AddEvent("no defined auths to upsert")
		}

		span.AddEvent("setting all rows not in defined auth inactive")

		result := tx.Model(&Auth{}).
			Where("id NOT IN ?", keysInConfig).
			Updates(&Auth{Active: NewNullFromData(false)})
		if result.Error != nil {
			span.RecordError(result.Error)
			span.SetStatus(codes.Error, "failed to set all rows not in defined auth inactive")
			return fmt.Errorf(
				"failed to set all rows not in defined auth inactive: %w",
				result.Error,
			)
		}

		if err := ensureLedgerRows(ctx, tx, cfg); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to ensure ledger rows")
			return err
		}

		span.RecordError(nil)
		span.SetStatus(codes.Ok, "updated auths")
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to update auth")
		return fmt.Errorf("failed to update auth: %w", err)
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "updated auth")
	return nil
}

// Ledger rows only ever have name and email refreshed from config. Counter
// columns must survive a redeploy untouched.
func ensureLedgerRows(ctx context.Context, tx *gorm.DB, cfg *config.Config) error {
	ctx, span := tracer.Start(ctx, "ensureLedgerRows")
	defer span.End()

	tx = tx.WithContext(ctx)

	refreshIdentity := clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "email"}),
	}

	if len(cfg.Researchers) != 0 {
		researchers := make([]*Researcher, 0, len(cfg.Researchers))
		for _, actor := range cfg.Researchers {
			actorID, err := uuid.Parse(actor.ID)
			if err != nil {
				return fmt.Errorf("error parsing researcher id: %w", err)
			}

			researchers = append(researchers, &Researcher{
				Model: Model{ID: actorID},
				Name:  actor.Name,
				Email: actor.Email,
			})
		}

		span.AddEvent("upserting researcher ledger rows")
		if err := tx.Clauses(refreshIdentity).Create(researchers).Error; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to upsert researcher ledger rows")
			return fmt.Errorf("failed to upsert researcher ledger rows: %w", err)
		}
	}

	if len(cfg.Organizations) != 0 {
		organizations := make([]*Organization, 0, len(cfg.Organizations))
		for _, actor := range cfg.Organizations {
			actorID, err := uuid.Parse(actor.ID)
			if err != nil {
				return fmt.Errorf("error parsing organization id: %w", err)
			}

			organizations = append(organizations, &Organization{
				Model: Model{ID: actorID},
				Name:  actor.Name,
				Email: actor.Email,
			})
		}

		span.AddEvent("upserting organization rows")
		if err := tx.Clauses(refreshIdentity).Create(organizations).Error; err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to upsert organization rows")
			return fmt.Errorf("failed to upsert organization rows: %w", err)
		}
	}

	span.RecordError(nil)
	span.SetStatus(codes.Ok, "ensured ledger rows")
	return nil
}
