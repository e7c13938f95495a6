// Package protocol builds the instructions of the confidential poll program.
//
// # Instructions
//
// The program exposes three instructions, each queueing one confidential
// computation on the coordinator cluster:
//
//  1. create_new_poll: creates the poll account and initializes the encrypted
//     vote counters (circuit "init_vote_stats").
//
//  2. vote: adds one encrypted ballot to the poll's counters and creates a
//     vote receipt so the voter cannot vote twice (circuit "vote").
//
//  3. reveal_result: asks the cluster to decrypt the counters. The tally is
//     emitted later in the callback transaction's logs (circuit
//     "reveal_result"), see package tally.
//
// # Wire Format
//
// Instruction data is an 8-byte discriminator followed by borsh-encoded
// arguments. Every instruction starts with a u64 computation offset and a
// u32 poll id:
//
//	create_new_poll  disc | u64 offset | u32 poll | u32 len | question | u128 nonce
//	vote             disc | u64 offset | u32 poll | [32]ciphertext | [32]pubkey | u128 nonce
//	reveal_result    disc | u64 offset | u32 poll
//
// The create and vote discriminators are literal constants; reveal_result
// uses sha256("global:reveal_result")[:8].
//
// # Accounts
//
// The first twelve accounts are shared: payer, signer PDA, MXE, mempool,
// executing pool, computation, computation definition, cluster, pool, clock,
// system program and the coordinator program. They are followed by the poll
// account and, for votes, the poll authority and the vote receipt.
//
// All operations share one parameterized builder over a table of operation
// descriptors, so the table is the single source of truth for the format.
package protocol
