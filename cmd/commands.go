package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/auth"
	"github.com/brettbedarf/tilefs/filesystem"
	"github.com/brettbedarf/tilefs/internal/util"
	"github.com/brettbedarf/tilefs/requests"
	"github.com/brettbedarf/tilefs/server"
)

var errNoNode = errors.New("no node")

func (a *app) keygen() error {
	key, err := auth.GenerateKey()
	if err != nil {
		return err
	}
	logger := util.GetLogger("keygen")
	logger.Info().Str("did", key.DID()).Msg("Generated key")
	fmt.Fprintln(a.out, key.EncodedSeed())
	return nil
}

func (a *app) token() error {
	seed, _ := a.opts.String("<seed>")
	key, err := auth.ParseSeed(seed)
	if err != nil {
		return err
	}
	var ttl time.Duration
	if raw, _ := a.opts.String("--ttl"); raw != "" {
		if ttl, err = time.ParseDuration(raw); err != nil {
			return fmt.Errorf("invalid ttl %q: %w", raw, err)
		}
	}
	token, err := key.Token(ttl)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, token)
	return nil
}

func (a *app) whoami() error {
	if a.caller == "" {
		return fmt.Errorf("no identity: pass --token or set %s", TokenEnv)
	}
	fmt.Fprintln(a.out, a.caller)
	return nil
}

// openOptions builds resolution options from the shared flags
func (a *app) openOptions(create bool) filesystem.OpenOptions {
	controller, _ := a.opts.String("--controller")
	hidden, _ := a.opts.Bool("--hidden")
	temporary, _ := a.opts.Bool("--temporary")
	return filesystem.OpenOptions{
		Controller:        controller,
		CreateIfUndefined: create,
		Hidden:            hidden,
		Temporary:         temporary,
	}
}

func (a *app) path() string {
	path, _ := a.opts.String("<path>")
	return path
}

// resolve opens the node at <path> and fails if there is none
func (a *app) resolve(ctx context.Context, create bool) (filesystem.Node, error) {
	node, err := a.fs.Open(ctx, a.path(), a.openOptions(create))
	if err != nil {
		return nil, err
	}
	if node == nil {
		if create {
			return nil, fmt.Errorf("%w at %s: it does not exist and %q cannot create it", errNoNode, a.path(), a.caller)
		}
		return nil, fmt.Errorf("%w at %s", errNoNode, a.path())
	}
	return node, nil
}

func (a *app) resolveFile(ctx context.Context, create bool) (*filesystem.File, error) {
	node, err := a.resolve(ctx, create)
	if err != nil {
		return nil, err
	}
	file, ok := node.(*filesystem.File)
	if !ok {
		return nil, fmt.Errorf("%s is a folder", node.Path())
	}
	return file, nil
}

func (a *app) printNode(node filesystem.Node) {
	fmt.Fprintf(a.out, "%s\t%s\t%s\n", node.Type(), node.Path(), node.ID())
}

func (a *app) locate() error {
	id, err := a.fs.Locate(context.Background(), a.path(), a.openOptions(false))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, id)
	return nil
}

func (a *app) check() error {
	node, err := a.fs.Check(context.Background(), a.path(), a.openOptions(false))
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("%w at %s", errNoNode, a.path())
	}
	a.printNode(node)
	return nil
}

func (a *app) open() error {
	create, _ := a.opts.Bool("--create")
	node, err := a.resolve(context.Background(), create)
	if err != nil {
		return err
	}
	a.printNode(node)
	return nil
}

func (a *app) ls() error {
	ctx := context.Background()
	node, err := a.resolve(ctx, false)
	if err != nil {
		return err
	}
	folder, ok := node.(*filesystem.Folder)
	if !ok {
		return fmt.Errorf("%s is a file", node.Path())
	}
	folders, files, err := folder.Children(ctx, a.cfg.ListLimit)
	if err != nil {
		return err
	}
	for _, name := range folders {
		fmt.Fprintf(a.out, "%s/\n", name)
	}
	for _, name := range files {
		fmt.Fprintln(a.out, name)
	}
	return nil
}

func (a *app) write() error {
	ctx := context.Background()
	create, _ := a.opts.Bool("--create")
	file, err := a.resolveFile(ctx, create)
	if err != nil {
		return err
	}

	content, err := a.opts.String("<content>")
	if err != nil {
		raw, err := io.ReadAll(a.in)
		if err != nil {
			return fmt.Errorf("failed to read content: %w", err)
		}
		content = string(raw)
	}
	return file.Append(ctx, content)
}

func (a *app) cat() error {
	ctx := context.Background()
	file, err := a.resolveFile(ctx, false)
	if err != nil {
		return err
	}
	content, _, err := file.Current(ctx)
	if err != nil {
		return err
	}
	fmt.Fprint(a.out, content)
	return nil
}

func (a *app) history() error {
	ctx := context.Background()
	limit := 10
	if raw, _ := a.opts.String("--limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", raw, err)
		}
		limit = n
	}
	file, err := a.resolveFile(ctx, false)
	if err != nil {
		return err
	}
	revisions, err := file.History.ListRecent(ctx, limit)
	if err != nil {
		return err
	}
	for _, rev := range revisions {
		fmt.Fprintln(a.out, strconv.Quote(rev))
	}
	return nil
}

func (a *app) get() error {
	id, _ := a.opts.String("<id>")
	node, err := a.fs.Get(context.Background(), tilefs.DocumentID(id))
	if err != nil {
		return err
	}
	if node == nil {
		return fmt.Errorf("%w at %s", errNoNode, id)
	}
	a.printNode(node)
	return nil
}

func (a *app) provision() error {
	logger := util.GetLogger("provision")
	ctx := context.Background()

	file, _ := a.opts.String("<nodes_file>")
	reqs, err := requests.LoadNodeRequestsFile(file)
	if err != nil {
		return err
	}
	controller, _ := a.opts.String("--controller")

	provisioned := 0
	for _, req := range reqs {
		node, err := a.fs.Provision(ctx, req, controller)
		if err != nil {
			return fmt.Errorf("failed to provision %s: %w", req.Path, err)
		}
		if node == nil {
			logger.Warn().Str("request", req.ID).Str("path", req.Path).Msg("Node could not be created")
			continue
		}
		a.printNode(node)
		provisioned++
	}
	logger.Info().Int("requested", len(reqs)).Int("provisioned", provisioned).Msg("Provisioning done")
	return nil
}

func (a *app) mount() error {
	logger := util.GetLogger("mount")
	mnt, _ := a.opts.String("<mountpoint>")

	if umount, _ := a.opts.Bool("--umount"); umount {
		// we ignore error here if not already mounted
		exec.Command("fusermount", "-u", mnt).Run() // nolint:errcheck
	}

	srv := server.New(a.cfg, a.fs)
	if err := srv.Serve(context.Background(), mnt, a.path(), a.openOptions(false)); err != nil {
		return err
	}

	// Setup signal handling for graceful shutdown
	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		sig := <-signalChan
		logger.Info().Str("signal", sig.String()).Msg("Received signal, unmounting filesystem")
		if err := srv.Unmount(); err != nil {
			logger.Error().Err(err).Msg("Failed to unmount filesystem")
		}
	}()

	srv.Wait()
	logger.Info().Msg("Filesystem unmounted")
	return nil
}
