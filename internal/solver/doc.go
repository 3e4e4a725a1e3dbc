// Package solver implements the numeric core: a damped Gauss-Newton
// iteration that repositions sketch primitives to satisfy the declared
// constraints.
//
// ALGORITHM:
//
// The state vector X holds (x, y) per point in arena order followed by one
// radius per circle. Each constraint contributes one or more scalar
// residuals measuring its current violation; the solver drives the
// residual vector R(X) toward zero:
//
//  1. Evaluate R(X); stop when the RMS residual drops below the tolerance.
//  2. Build the Jacobian J by forward finite differences (perturb each
//     free variable by the step size and re-evaluate R).
//  3. Form the damped normal equations (JᵀJ + λI)·ΔX = −JᵀR, force rows of
//     fixed variables to identity, and solve by Gaussian elimination with
//     partial pivoting. Near-singular pivots are skipped - the variable
//     simply receives no update that iteration.
//  4. Abort if ΔX contains NaN, keeping the last valid state.
//  5. Apply ΔX and clamp every radius to the configured floor.
//
// DETERMINISM:
//
// Solve is a pure function of the arena, the constraints, and the Params.
// There is no hidden state, no randomness, and no concurrency; two calls
// with identical inputs produce identical floating-point results. Callers
// must serialize solves that share an arena.
//
// Constraint forms whose residual count depends on the current state (the
// internal/external modes of circle-circle distance and tangency) have
// their mode frozen at the top of each iteration, so every finite
// difference of an iteration sees the same residual layout. The mode is
// re-chosen from the live state each iteration, which can flip it between
// solves on borderline configurations.
//
// COST:
//
// The finite-difference Jacobian makes one iteration O(|X|·|R|), so total
// cost grows roughly quadratically with free variable count. That is fine
// for sketches with tens of primitives, which is the intended scale.
package solver
