// Command pollctl drives the confidential poll program from a terminal.
//
// # Commands
//
// addresses: Print every derived account for a poll.
//
//	pollctl addresses --authority=<pubkey> --poll-id=1 --voter=<pubkey>
//
// create-poll, vote, reveal: Build an instruction. Without --submit the
// unsigned transaction is printed as base64 for an external wallet; with
// --submit it is signed with --keypair and broadcast.
//
//	pollctl create-poll --keypair=~/.config/solana/id.json --poll-id=1 --question="Ship it?" --submit
//	pollctl vote --payer=<pubkey> --authority=<pubkey> --poll-id=1 --vote=yes
//	pollctl reveal --keypair=~/.config/solana/id.json --poll-id=1 --submit
//
// results: Read the revealed counters from a poll account.
//
//	pollctl results --authority=<pubkey> --poll-id=1
//
// decode-logs: Recover a tally from a reveal transaction, or from a file of
// log lines with --file.
//
//	pollctl decode-logs --signature=<sig>
//	pollctl decode-logs --file=logs.txt
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/flashbots/arcpoll/address"
	"github.com/flashbots/arcpoll/cmd/common"
	"github.com/flashbots/arcpoll/ledger"
	"github.com/flashbots/arcpoll/protocol"
	"github.com/flashbots/arcpoll/tally"
	"github.com/gagliardetto/solana-go"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "addresses":
		err = runAddresses(args)
	case "create-poll":
		err = runCreatePoll(ctx, args)
	case "vote":
		err = runVote(ctx, args)
	case "reveal":
		err = runReveal(ctx, args)
	case "results":
		err = runResults(ctx, args)
	case "decode-logs":
		err = runDecodeLogs(ctx, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`pollctl - CLI tools for confidential polls

Usage:
  pollctl <command> [options]

Commands:
  addresses     Print derived accounts for a poll
  create-poll   Build or submit create_new_poll
  vote          Encrypt a ballot and build or submit vote
  reveal        Build or submit reveal_result
  results       Read revealed counters from a poll account
  decode-logs   Recover a tally from reveal transaction logs

Run 'pollctl <command> --help' for command-specific options.`)
}

// env is the configuration shared by every subcommand.
type env struct {
	configPath string
	rpcURL     string
	keypair    string
	payer      string
	submit     bool

	cfg *common.Config
}

func (e *env) register(fs *flag.FlagSet, withPayer bool) {
	fs.StringVar(&e.configPath, "config", "", "Path to YAML config file")
	fs.StringVar(&e.rpcURL, "rpc", "", "Solana JSON-RPC endpoint")
	if withPayer {
		fs.StringVar(&e.keypair, "keypair", "", "solana-keygen keypair file used to sign")
		fs.StringVar(&e.payer, "payer", "", "Payer public key when printing an unsigned transaction")
		fs.BoolVar(&e.submit, "submit", false, "Sign with --keypair and broadcast")
	}
}

func (e *env) load() error {
	cfg := common.DefaultConfig()
	if e.configPath != "" {
		var err error
		if cfg, err = common.LoadConfig(e.configPath); err != nil {
			return err
		}
	}
	if e.rpcURL != "" {
		cfg.RPCURL = e.rpcURL
	}
	if e.keypair == "" {
		e.keypair = cfg.Keypair
	}
	e.cfg = cfg
	return nil
}

func (e *env) transport() *ledger.RPCTransport {
	return ledger.NewRPCTransport(e.cfg.RPCURL)
}

func (e *env) builder() *protocol.Builder {
	return protocol.NewBuilder(e.cfg.Program, nil)
}

// signer loads the keypair, which --submit requires.
func (e *env) signer() (*ledger.KeypairSigner, error) {
	if e.keypair == "" {
		return nil, errors.New("--keypair is required")
	}
	return ledger.LoadKeypairSigner(e.keypair)
}

// payerKey resolves who pays: the keypair if given, else --payer.
func (e *env) payerKey() (solana.PublicKey, error) {
	if e.keypair != "" {
		s, err := e.signer()
		if err != nil {
			return solana.PublicKey{}, err
		}
		return s.PublicKey(), nil
	}
	if e.payer == "" {
		return solana.PublicKey{}, errors.New("--keypair or --payer is required")
	}
	return solana.PublicKeyFromBase58(e.payer)
}

// emit either submits ix or prints the unsigned transaction.
func (e *env) emit(ctx context.Context, payer solana.PublicKey, ix *protocol.Instruction) error {
	t := e.transport()
	if e.submit {
		s, err := e.signer()
		if err != nil {
			return err
		}
		sig, err := ledger.SignAndSubmit(ctx, t, s, ix.Solana())
		if err != nil {
			return err
		}
		fmt.Printf("%s submitted: %s\n", ix.Operation, sig)
		fmt.Printf("computation offset: %d\n", ix.ComputationOffset)
		return nil
	}

	tx, err := ledger.UnsignedTransaction(ctx, t, payer, ix.Solana())
	if err != nil {
		return err
	}
	encoded, err := ledger.EncodeTransaction(tx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"operation":         ix.Operation.String(),
		"computationOffset": ix.ComputationOffset,
		"transaction":       encoded,
	})
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func parseKeyFlag(name, value string) (solana.PublicKey, error) {
	if value == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	pk, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("--%s: %w", name, err)
	}
	return pk, nil
}

// --- addresses ---

func runAddresses(args []string) error {
	var (
		e         env
		authority string
		voter     string
		pollID    uint
		circuit   string
	)
	fs := flag.NewFlagSet("addresses", flag.ExitOnError)
	e.register(fs, false)
	fs.StringVar(&authority, "authority", "", "Poll authority public key")
	fs.StringVar(&voter, "voter", "", "Voter public key for the vote receipt")
	fs.UintVar(&pollID, "poll-id", 0, "Poll ID")
	fs.StringVar(&circuit, "circuit", "vote", "Circuit for the computation definition")
	fs.Parse(args)

	if err := e.load(); err != nil {
		return err
	}
	d := e.builder().Deriver()
	out := map[string]string{}

	add := func(name string, key solana.PublicKey, err error) error {
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		out[name] = key.String()
		return nil
	}

	signer, err := d.SignerAccount()
	if err := add("signer", signer, err); err != nil {
		return err
	}
	mxe, err := d.MXEAccount()
	if err := add("mxe", mxe, err); err != nil {
		return err
	}
	mempool, err := d.MempoolAccount()
	if err := add("mempool", mempool, err); err != nil {
		return err
	}
	execpool, err := d.ExecutingPool()
	if err := add("execpool", execpool, err); err != nil {
		return err
	}
	cluster, err := d.ClusterAccount()
	if err := add("cluster", cluster, err); err != nil {
		return err
	}
	compDef, err := d.CompDefAccount(circuit)
	if err := add("compDef:"+circuit, compDef, err); err != nil {
		return err
	}

	if authority != "" {
		auth, err := parseKeyFlag("authority", authority)
		if err != nil {
			return err
		}
		poll, err := d.PollAccount(auth, uint32(pollID))
		if err := add("poll", poll, err); err != nil {
			return err
		}
		if voter != "" {
			v, err := parseKeyFlag("voter", voter)
			if err != nil {
				return err
			}
			receipt, err := d.VoteReceipt(poll, v)
			if err := add("voteReceipt", receipt, err); err != nil {
				return err
			}
		}
	}

	out["compDefOffset:"+circuit] = fmt.Sprintf("%d", address.CompDefOffsetU32(circuit))
	return printJSON(out)
}

// --- create-poll ---

func runCreatePoll(ctx context.Context, args []string) error {
	var (
		e        env
		pollID   uint
		question string
	)
	fs := flag.NewFlagSet("create-poll", flag.ExitOnError)
	e.register(fs, true)
	fs.UintVar(&pollID, "poll-id", 0, "Poll ID")
	fs.StringVar(&question, "question", "", "Poll question")
	fs.Parse(args)

	if err := e.load(); err != nil {
		return err
	}
	payer, err := e.payerKey()
	if err != nil {
		return err
	}
	ix, err := e.builder().CreateNewPoll(protocol.CreatePollParams{
		Payer:    payer,
		PollID:   uint32(pollID),
		Question: question,
	})
	if err != nil {
		return err
	}
	return e.emit(ctx, payer, ix)
}

// --- vote ---

func runVote(ctx context.Context, args []string) error {
	var (
		e         env
		authority string
		pollID    uint
		vote      string
	)
	fs := flag.NewFlagSet("vote", flag.ExitOnError)
	e.register(fs, true)
	fs.StringVar(&authority, "authority", "", "Poll authority public key")
	fs.UintVar(&pollID, "poll-id", 0, "Poll ID")
	fs.StringVar(&vote, "vote", "", "yes, no, maybe or an option index")
	fs.Parse(args)

	if err := e.load(); err != nil {
		return err
	}
	payer, err := e.payerKey()
	if err != nil {
		return err
	}
	auth, err := parseKeyFlag("authority", authority)
	if err != nil {
		return err
	}

	t := e.transport()
	keys, err := common.NewKeySource(e.cfg.Encryption, e.cfg.Program, t)
	if err != nil {
		return err
	}
	log := common.NewLogger(e.cfg.LogLevel, false)
	payload, err := common.NewEncryptor(e.cfg.Encryption, keys, log).EncryptVote(ctx, vote)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "ballot encrypted in %s mode\n", payload.Mode)

	ciphertext, senderKey, nonce := payload.VoteFields()
	ix, err := e.builder().Vote(protocol.VoteParams{
		Payer:           payer,
		Authority:       auth,
		PollID:          uint32(pollID),
		Ciphertext:      ciphertext,
		SenderPublicKey: senderKey,
		Nonce:           nonce,
	})
	if err != nil {
		return err
	}
	return e.emit(ctx, payer, ix)
}

// --- reveal ---

func runReveal(ctx context.Context, args []string) error {
	var (
		e      env
		pollID uint
	)
	fs := flag.NewFlagSet("reveal", flag.ExitOnError)
	e.register(fs, true)
	fs.UintVar(&pollID, "poll-id", 0, "Poll ID")
	fs.Parse(args)

	if err := e.load(); err != nil {
		return err
	}
	payer, err := e.payerKey()
	if err != nil {
		return err
	}
	ix, err := e.builder().RevealResult(protocol.RevealParams{Payer: payer, PollID: uint32(pollID)})
	if err != nil {
		return err
	}
	return e.emit(ctx, payer, ix)
}

// --- results ---

func runResults(ctx context.Context, args []string) error {
	var (
		e         env
		authority string
		pollID    uint
	)
	fs := flag.NewFlagSet("results", flag.ExitOnError)
	e.register(fs, false)
	fs.StringVar(&authority, "authority", "", "Poll authority public key")
	fs.UintVar(&pollID, "poll-id", 0, "Poll ID")
	fs.Parse(args)

	if err := e.load(); err != nil {
		return err
	}
	auth, err := parseKeyFlag("authority", authority)
	if err != nil {
		return err
	}
	poll, err := e.builder().Deriver().PollAccount(auth, uint32(pollID))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	reader := tally.NewReader(e.transport(), tally.NewDecoder(e.cfg.Program.Namespace))
	t, err := reader.FromAccount(ctx, poll)
	if err != nil {
		return err
	}
	return printJSON(t)
}

// --- decode-logs ---

func runDecodeLogs(ctx context.Context, args []string) error {
	var (
		e         env
		signature string
		file      string
		inspect   bool
	)
	fs := flag.NewFlagSet("decode-logs", flag.ExitOnError)
	e.register(fs, false)
	fs.StringVar(&signature, "signature", "", "Reveal transaction signature")
	fs.StringVar(&file, "file", "", "File with one log line per line")
	fs.BoolVar(&inspect, "inspect", false, "Print a per-blob report")
	fs.Parse(args)

	if err := e.load(); err != nil {
		return err
	}

	var lines []string
	switch {
	case file != "":
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			lines = append(lines, scanner.Text())
		}
		if err := scanner.Err(); err != nil {
			return err
		}
	case signature != "":
		sig, err := solana.SignatureFromBase58(signature)
		if err != nil {
			return fmt.Errorf("--signature: %w", err)
		}
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if lines, err = e.transport().TransactionLogs(ctx, sig); err != nil {
			return err
		}
	default:
		return errors.New("--signature or --file is required")
	}

	namespace := e.cfg.Program.Namespace
	if inspect {
		if err := printJSON(tally.Inspect(lines, tally.DefaultEventNames(namespace))); err != nil {
			return err
		}
	}

	reading, err := tally.NewDecoder(namespace).Best(lines)
	if err != nil {
		return err
	}
	return printJSON(reading)
}
