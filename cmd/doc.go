// Package cmd provides the poll binaries.
//
// # Commands
//
// pollapi: HTTP API that builds unsigned poll transactions, encrypts
// ballots, reads revealed tallies and archives decoded reveals.
//
//	go run ./cmd/pollapi --config=pollapi.yaml
//	go run ./cmd/pollapi --addr=:8080 --rpc=https://api.devnet.solana.com
//
// pollctl: Terminal client for the same operations. It can print unsigned
// transactions or sign and submit them with a solana-keygen keypair.
//
//	go run ./cmd/pollctl addresses --authority=<pubkey> --poll-id=1
//	go run ./cmd/pollctl create-poll --keypair=id.json --poll-id=1 --question="Ship it?" --submit
//	go run ./cmd/pollctl decode-logs --signature=<sig> --inspect
//
// Both read the YAML format defined in cmd/common. Command-line flags
// override the file.
package cmd
