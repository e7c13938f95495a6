/*
Package testutil provides fixtures shared by the poll client tests.

# Ledger

FakeTransport is an in-memory ledger transport. Accounts and transaction
logs are seeded with options, and every call can be made to fail:

	transport := testutil.NewFakeTransport(
	    testutil.WithAccount(pollAddress, testutil.PollAccountData(235, 4, 2, 1)),
	    testutil.WithLogs(sig, "Program log: Instruction: RevealResult"),
	)
	transport.LogsErr = errors.New("rpc unavailable")

# Log Blobs

TallyBlob lays out three counters inside an event blob and ProgramDataLine
renders it as a log line:

	line := testutil.ProgramDataLine(testutil.TallyBlob(7, 3, 2,
	    testutil.WithPrefix(disc[:]),
	))

This package is intended for testing purposes only and should not be used in
production code.
*/
package testutil
