/**
 * Copyright 2025-present Coinbase Global, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *  http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package formance

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"recytoken-up-go/internal/ledger"
	"recytoken-up-go/internal/models"

	v3 "github.com/formancehq/formance-sdk-go/v3"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/operations"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/sdkerrors"
	"github.com/formancehq/formance-sdk-go/v3/pkg/models/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var _ ledger.Recorder = (*Recorder)(nil)

const defaultLedgerName = "recytoken-up"

// Kilograms are posted with gram precision
const (
	kgAsset     = "KG/3"
	kgPrecision = 3
)

// historyPageSize is the page size of a token's history query; at most
// maxHistoryPages pages are read.
const (
	historyPageSize = int64(100)
	maxHistoryPages = 50
)

// Recorder implements ledger.Recorder on a Formance Stack ledger.
type Recorder struct {
	client *v3.Formance
	ledger string
}

// NewRecorder connects to the stack and creates the ledger if it doesn't exist yet.
func NewRecorder(ctx context.Context, cfg models.FormanceConfig) (*Recorder, error) {
	if cfg.StackURL == "" || cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, fmt.Errorf("formance config requires StackURL, ClientID, and ClientSecret")
	}
	if cfg.LedgerName == "" {
		cfg.LedgerName = defaultLedgerName
	}

	zap.L().Info("Connecting to Formance Stack",
		zap.String("stack_url", cfg.StackURL),
		zap.String("ledger", cfg.LedgerName))

	client := v3.New(
		v3.WithServerURL(cfg.StackURL),
		v3.WithSecurity(shared.Security{
			ClientID:     v3.Pointer(cfg.ClientID),
			ClientSecret: v3.Pointer(cfg.ClientSecret),
		}),
	)

	r := &Recorder{client: client, ledger: cfg.LedgerName}
	if err := r.ensureLedger(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure ledger exists: %w", err)
	}

	zap.L().Info("Formance recorder initialized", zap.String("ledger", cfg.LedgerName))
	return r, nil
}

func (r *Recorder) ensureLedger(ctx context.Context) error {
	_, err := r.client.Ledger.V2.CreateLedger(ctx, operations.V2CreateLedgerRequest{
		Ledger: r.ledger,
		V2CreateLedgerRequest: shared.V2CreateLedgerRequest{
			Metadata: map[string]string{
				"application": "recytoken-up",
			},
		},
	})
	if err != nil {
		var apiErr *sdkerrors.V2ErrorResponse
		if errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumLedgerAlreadyExists {
			zap.L().Info("Ledger already exists", zap.String("ledger", r.ledger))
			return nil
		}
		return err
	}
	zap.L().Info("Ledger created", zap.String("ledger", r.ledger))
	return nil
}

// ---------- helpers ----------

// kgUnits converts kilograms to the integer gram amount posted to the ledger.
func kgUnits(kg decimal.Decimal) *big.Int {
	return kg.Shift(kgPrecision).BigInt()
}

// unitsToKg converts a posted amount back to kilograms.
func unitsToKg(raw *big.Int) decimal.Decimal {
	if raw == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(raw, -kgPrecision)
}

// isConflictError checks whether a Formance SDK error is a CONFLICT (duplicate reference).
func isConflictError(err error) bool {
	var apiErr *sdkerrors.V2ErrorResponse
	return errors.As(err, &apiErr) && apiErr.ErrorCode == shared.V2ErrorsEnumConflict
}

func strPtr(s string) *string { return &s }
