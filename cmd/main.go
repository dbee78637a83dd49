package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/docopt/docopt-go"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/adapters"
	"github.com/brettbedarf/tilefs/auth"
	"github.com/brettbedarf/tilefs/config"
	"github.com/brettbedarf/tilefs/filesystem"
	"github.com/brettbedarf/tilefs/internal/util"
)

// TokenEnv is read when no --token is given
const TokenEnv = "TILEFS_TOKEN"

const usage = `tilefs: folders and files on a deterministic document network.

Paths are slash separated folders; a double slash marks the file name,
e.g. C:/docs//readme.md. Writes need an identity token (see keygen, token).

Usage:
    tilefs keygen
    tilefs token [--ttl=<duration>] <seed>
    tilefs whoami [options]
    tilefs locate [options] <path>
    tilefs check [options] <path>
    tilefs open [options] [--create] [--hidden] [--temporary] <path>
    tilefs ls [options] <path>
    tilefs write [options] [--create] <path> [<content>]
    tilefs cat [options] <path>
    tilefs history [options] [--limit=<n>] <path>
    tilefs get [options] <id>
    tilefs provision [options] <nodes_file>
    tilefs mount [options] [--umount] <path> <mountpoint>
    tilefs -h | --help
    tilefs --version

Options:
    -h --help                 Show this screen.
    --version                 Show version.
    -c --config=<config>      Config file (.yaml, .yml or .json).
    -s --store=<store>        Snapshot file; selects the snapshot store.
    -t --token=<token>        Identity token. Defaults to $TILEFS_TOKEN.
    --controller=<did>        Address paths under another identity.
    -v --verbose=<level>      Log verbosity 1 (error) to 5 (trace).
    --ttl=<duration>          Token lifetime, e.g. 24h. Never expires if unset.
    --limit=<n>               Max revisions to print [default: 10].
    --umount                  Unmount the mountpoint first if needed.`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stdin, os.Getenv); err != nil {
		logger := util.GetLogger("main")
		logger.Fatal().Err(err).Msg("Command failed")
	}
}

// app carries what every command needs
type app struct {
	opts   docopt.Opts
	cfg    *config.Config
	out    io.Writer
	in     io.Reader
	caller string
	store  adapters.Store
	fs     *filesystem.FileSystem
}

func run(args []string, out io.Writer, in io.Reader, getenv func(string) string) (err error) {
	parser := &docopt.Parser{HelpHandler: func(err error, usage string) {
		if err != nil {
			fmt.Fprintln(os.Stderr, usage)
			return
		}
		fmt.Fprintln(out, usage)
	}}
	opts, err := parser.ParseArgs(usage, args, tilefs.Version)
	if err != nil {
		return err
	}
	// help and version were already printed by the handler
	if len(opts) == 0 {
		return nil
	}
	if help, _ := opts.Bool("--help"); help {
		return nil
	}
	if version, _ := opts.Bool("--version"); version {
		return nil
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	util.InitializeLogger(cfg.LogLvl, os.Stderr)

	a := &app{opts: opts, cfg: cfg, out: out, in: in}

	// commands that don't touch a store
	switch {
	case a.is("keygen"):
		return a.keygen()
	case a.is("token"):
		return a.token()
	}

	if a.caller, err = identity(opts, getenv); err != nil {
		return err
	}
	if a.is("whoami") {
		return a.whoami()
	}

	adapters.RegisterBuiltins()
	if a.store, err = adapters.Open(cfg.Store); err != nil {
		return err
	}
	defer func() {
		if cerr := a.store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	a.fs = filesystem.NewFS(cfg, a.caller, a.store.Client(a.caller))

	switch {
	case a.is("locate"):
		return a.locate()
	case a.is("check"):
		return a.check()
	case a.is("open"):
		return a.open()
	case a.is("ls"):
		return a.ls()
	case a.is("write"):
		return a.write()
	case a.is("cat"):
		return a.cat()
	case a.is("history"):
		return a.history()
	case a.is("get"):
		return a.get()
	case a.is("provision"):
		return a.provision()
	case a.is("mount"):
		return a.mount()
	}
	return fmt.Errorf("unknown command")
}

func (a *app) is(cmd string) bool {
	ok, _ := a.opts.Bool(cmd)
	return ok
}

// loadConfig merges the config file (if any) with cli overrides
func loadConfig(opts docopt.Opts) (*config.Config, error) {
	cfg := config.NewDefaultConfig()
	if path, _ := opts.String("--config"); path != "" {
		var err error
		if cfg, err = config.NewConfigFromFile(path); err != nil {
			return nil, err
		}
	}

	override := &config.ConfigOverride{}
	if v, _ := opts.String("--verbose"); v != "" {
		verbose, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid verbosity %q: %w", v, err)
		}
		override.LogLvl = &verbose
	}
	if store, _ := opts.String("--store"); store != "" {
		override.StoreType = util.Pointer(adapters.SnapshotStoreType)
		override.StorePath = &store
	}
	cfg.Merge(override)
	return cfg, nil
}

// identity authenticates the token from the flags or environment. No token
// means an anonymous, read-only caller.
func identity(opts docopt.Opts, getenv func(string) string) (string, error) {
	token, _ := opts.String("--token")
	if token == "" {
		token = getenv(TokenEnv)
	}
	if token == "" {
		return "", nil
	}
	return auth.Authenticate(token)
}
