// Package mockzk produces objects shaped like Groth16 proofs without any
// proving system behind them. The points are random bytes, they do not bind
// to the private inputs, and VerifyAgeProof only checks shape and bounds.
//
// Nothing here is sound. Engine.Sound reports false and every proof carries
// the "groth16-mock" protocol tag so consumers cannot mistake it for a real
// circuit proof.
package mockzk
