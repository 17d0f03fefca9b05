/* Copyright © 2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package tourney

import "errors"

var (
	ErrInsufficientPlayers = errors.New("fewer than 2 eligible players")
	ErrIncompleteResultSet = errors.New("results missing for issued pairings")
	ErrTournamentDecided   = errors.New("knockout has a single or no survivor")

	ErrInvalidResult   = errors.New("invalid match result")
	ErrUnknownPairing  = errors.New("result does not match an issued pairing")
	ErrDuplicateResult = errors.New("pairing already has a result")
	ErrUnknownBoard    = errors.New("no such board in the current round")

	ErrWrongPhase      = errors.New("operation not allowed in current phase")
	ErrUnknownSystem   = errors.New("unknown tournament system")
	ErrUnknownMethod   = errors.New("unknown tie-break method")
	ErrDuplicatePlayer = errors.New("player listed more than once")
)
