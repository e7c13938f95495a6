/*
# Poll Services Package

The services package exposes the confidential poll program over HTTP.

## Overview

PollService turns JSON requests into unsigned program transactions, encrypted
ballots and decoded tallies. It never holds a signing key: every transaction
it returns carries empty signature slots for the caller's wallet to fill.

## Endpoints

1. **Transaction builders**
  - `POST /create-poll` - `{publicKey, pollId, question}` to `{transaction}`
  - `POST /vote` - `{publicKey, authority, pollId, vote, voteEncryptionPubkey, voteNonce}` to `{transaction}`
  - `POST /reveal-result` - `{publicKey, pollId}` to `{transaction}`

2. **Ballots**
  - `POST /encrypt-vote` - `{publicKey, vote}` to `{encryptedVote}`

3. **Results**
  - `GET /poll-results?authority=&pollId=` - counters stored in the poll account
  - `GET /reveal-logs?signature=` - per-blob inspection plus the decoded reading

4. **Reveal archive**
  - `POST /reveals` - decode a reveal transaction and archive the outcome
  - `GET /reveals?authority=&pollId=` - archived outcomes for a poll
  - `GET /reveals/{signature}` - one archived outcome

## Errors

Every failure is a JSON `ErrorResponse`. Invalid input is 400 and names the
field. Missing accounts, transactions, tallies and archive entries are 404.
Poll accounts that predate revealed counters are 409. Ledger transport
failures are 502.

## Usage

```go
svc, err := services.NewPollService(&services.PollServiceConfig{
	Program:   protocol.DefaultProgramConfig(),
	Transport: ledger.NewRPCTransport("https://api.devnet.solana.com"),
	Encryptor: confidential.NewEncryptor(keys),
	Store:     store.NewInMemoryStore(),
	Log:       logger,
})
if err != nil {
	return err
}

srv, err := httpserver.New(&httpserver.HTTPServerConfig{ListenAddr: ":8080", Log: logger}, svc)
```
*/
package services
