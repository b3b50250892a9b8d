package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/pflag"

	"github.com/hupe1980/faultkit"
	"github.com/hupe1980/faultkit/blobstore"
	"github.com/hupe1980/faultkit/campaign"
	"github.com/hupe1980/faultkit/hashkey"
	"github.com/hupe1980/faultkit/prime"
	"github.com/hupe1980/faultkit/random"
)

type command struct {
	summary string
	run     func(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

var commandOrder = []string{"delete", "mutate", "replace", "cmp", "hash", "prime", "rand", "campaign"}

var commands = map[string]*command{
	"delete":   {summary: "remove a region of a file", run: runDelete},
	"mutate":   {summary: "overwrite a region of a file with random bytes", run: runMutate},
	"replace":  {summary: "replace a byte range of a file", run: runReplace},
	"cmp":      {summary: "compare two files byte for byte", run: runCmp},
	"hash":     {summary: "print 64-bit hash keys", run: runHash},
	"prime":    {summary: "test primality or find the next prime", run: runPrime},
	"rand":     {summary: "draw integers from a closed interval", run: runRand},
	"campaign": {summary: "measure how a codec reacts to damaged input", run: runCampaign},
}

// globals are the flags shared by the subcommands that touch a store.
type globals struct {
	store     string
	logLevel  string
	logFormat string
}

func newFlagSet(name, args string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: faultkit %s [flags] %s\n\nFlags:\n", name, args)
		fs.PrintDefaults()
	}
	return fs
}

// newStoreFlagSet is newFlagSet plus --store, --log-level and --log-format.
func newStoreFlagSet(name, args string, stderr io.Writer) (*pflag.FlagSet, *globals) {
	g := &globals{}
	fs := newFlagSet(name, args, stderr)
	fs.StringVar(&g.store, "store", "file", "blob store: file, file://DIR, s3://BUCKET/PREFIX or minio://ENDPOINT/BUCKET/PREFIX")
	fs.StringVar(&g.logLevel, "log-level", "", "minimum log level: debug, info, warn or error (default $"+faultkit.EnvLogLevel+" or info)")
	fs.StringVar(&g.logFormat, "log-format", "text", "log format: text or json")
	return fs, g
}

// parse reports done when --help was requested.
func parse(fs *pflag.FlagSet, args []string, want int) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	if want >= 0 && fs.NArg() != want {
		fs.Usage()
		return false, fmt.Errorf("%s: want %d arguments, got %d", fs.Name(), want, fs.NArg())
	}
	return false, nil
}

func (g *globals) logger(stderr io.Writer) (*faultkit.Logger, error) {
	level, ok := faultkit.LevelFromEnv()
	if !ok {
		level = slog.LevelInfo
	}
	if g.logLevel != "" {
		if err := level.UnmarshalText([]byte(g.logLevel)); err != nil {
			return nil, fmt.Errorf("invalid --log-level %q: %w", g.logLevel, err)
		}
	}

	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	var h slog.Handler
	switch g.logFormat {
	case "text":
		h = slog.NewTextHandler(stderr, opts)
	case "json":
		h = slog.NewJSONHandler(stderr, opts)
	default:
		return nil, fmt.Errorf("invalid --log-format %q (supported: text, json)", g.logFormat)
	}

	l := faultkit.NewLogger(h)
	l.SetLevel(level)
	return l, nil
}

func (g *globals) openStore(ctx context.Context) (blobstore.Store, error) {
	spec, err := parseStoreSpec(g.store)
	if err != nil {
		return nil, err
	}
	return openStore(ctx, spec)
}

func (g *globals) corruptor(ctx context.Context, stderr io.Writer, opts ...faultkit.Option) (*faultkit.Corruptor, error) {
	logger, err := g.logger(stderr)
	if err != nil {
		return nil, err
	}
	store, err := g.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return faultkit.New(append([]faultkit.Option{faultkit.WithLogger(logger), faultkit.WithStore(store)}, opts...)...), nil
}

func printReport(w io.Writer, r *faultkit.Report) {
	fmt.Fprintf(w, "%s: %s (%d bytes, crc32c %08x) -> %s (%d bytes, crc32c %08x), region %s\n",
		r.Op, r.Input, r.InputSize, r.InputCRC, r.Output, r.OutputSize, r.OutputCRC, r.Region)
	if r.Advisory != nil {
		fmt.Fprintf(w, "warning: %s\n", r.Advisory.Message)
	}
}

func regionFlags(fs *pflag.FlagSet) (loc, size *float64) {
	loc = fs.Float64("loc", 0, "start of the region as a fraction of the file length, in [0, 1)")
	size = fs.Float64("size", 0, "length of the region as a fraction of the file length, > 0")
	return loc, size
}

func runDelete(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, g := newStoreFlagSet("delete", "IN OUT", stderr)
	loc, size := regionFlags(fs)
	if done, err := parse(fs, args, 2); done || err != nil {
		return err
	}

	c, err := g.corruptor(ctx, stderr)
	if err != nil {
		return err
	}
	rep, err := c.CorruptByDeletion(ctx, fs.Arg(0), fs.Arg(1), *loc, *size)
	if err != nil {
		return err
	}
	printReport(stdout, rep)
	return nil
}

func runMutate(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, g := newStoreFlagSet("mutate", "IN OUT", stderr)
	loc, size := regionFlags(fs)
	seed := fs.Uint64("seed", 0, "seed for the replacement bytes (default: process source)")
	if done, err := parse(fs, args, 2); done || err != nil {
		return err
	}

	var opts []faultkit.Option
	if fs.Changed("seed") {
		opts = append(opts, faultkit.WithRandom(random.New(*seed)))
	}
	c, err := g.corruptor(ctx, stderr, opts...)
	if err != nil {
		return err
	}
	rep, err := c.CorruptByMutation(ctx, fs.Arg(0), fs.Arg(1), *loc, *size)
	if err != nil {
		return err
	}
	printReport(stdout, rep)
	return nil
}

func runReplace(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, g := newStoreFlagSet("replace", "IN OUT", stderr)
	start := fs.Int("start", 0, "first byte to replace")
	count := fs.Int("count", 0, "number of bytes to replace")
	with := fs.String("with", "", "replacement bytes")
	if done, err := parse(fs, args, 2); done || err != nil {
		return err
	}

	c, err := g.corruptor(ctx, stderr)
	if err != nil {
		return err
	}
	rep, err := c.ReplaceBytes(ctx, fs.Arg(0), fs.Arg(1), *start, *count, []byte(*with))
	if err != nil {
		return err
	}
	printReport(stdout, rep)
	return nil
}

func runCmp(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, g := newStoreFlagSet("cmp", "A B", stderr)
	if done, err := parse(fs, args, 2); done || err != nil {
		return err
	}

	c, err := g.corruptor(ctx, stderr)
	if err != nil {
		return err
	}
	same, err := c.FilesAreIdentical(ctx, fs.Arg(0), fs.Arg(1))
	if err != nil {
		return err
	}
	if !same {
		fmt.Fprintln(stdout, "different")
		return exitError{code: 1}
	}
	fmt.Fprintln(stdout, "identical")
	return nil
}

func runHash(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("hash", "[--] VALUE...", stderr)
	kind := fs.String("kind", "string", "hash function: string, fast, float or point (point takes X Y; put -- before negative values)")
	buckets := fs.Uint32("buckets", 0, "also print the bucket index for a table of this size")
	if done, err := parse(fs, args, -1); done || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("hash: no values")
	}

	emit := func(label string, k hashkey.Key) {
		if *buckets > 0 {
			fmt.Fprintf(stdout, "%s\t%d\t%d\n", label, k, hashkey.Bucket(k, *buckets))
			return
		}
		fmt.Fprintf(stdout, "%s\t%d\n", label, k)
	}

	switch *kind {
	case "string", "fast":
		fn := hashkey.String
		if *kind == "fast" {
			fn = hashkey.StringFast
		}
		for _, v := range fs.Args() {
			k, err := fn(v)
			if err != nil {
				return fmt.Errorf("hash %q: %w", v, err)
			}
			emit(v, k)
		}
	case "float":
		for _, v := range fs.Args() {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("hash: %w", err)
			}
			emit(v, hashkey.Float64(f))
		}
	case "point":
		if fs.NArg() != 2 {
			return fmt.Errorf("hash: point wants X Y, got %d values", fs.NArg())
		}
		x, err := strconv.ParseInt(fs.Arg(0), 10, 32)
		if err != nil {
			return fmt.Errorf("hash: x: %w", err)
		}
		y, err := strconv.ParseInt(fs.Arg(1), 10, 32)
		if err != nil {
			return fmt.Errorf("hash: y: %w", err)
		}
		emit(fs.Arg(0)+","+fs.Arg(1), hashkey.Point(int32(x), int32(y)))
	default:
		return fmt.Errorf("hash: unknown --kind %q (supported: string, fast, float, point)", *kind)
	}
	return nil
}

func runPrime(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("prime", "N", stderr)
	next := fs.Bool("next", false, "print the smallest prime larger than N")
	if done, err := parse(fs, args, 1); done || err != nil {
		return err
	}

	if *next {
		n, err := strconv.ParseInt(fs.Arg(0), 10, 32)
		if err != nil {
			return fmt.Errorf("prime: %w", err)
		}
		p, err := prime.NextLargerPrime(int32(n))
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, p)
		return nil
	}

	n, err := strconv.ParseUint(fs.Arg(0), 10, 64)
	if err != nil {
		return fmt.Errorf("prime: %w", err)
	}
	v, err := prime.IsPrime(n)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d: %s\n", n, v)
	return nil
}

func runRand(_ context.Context, args []string, stdout, stderr io.Writer) error {
	fs := newFlagSet("rand", "[--] START END", stderr)
	seed := fs.Int64("seed", 0, "reseed the generator before the first draw when > 0")
	count := fs.Int("count", 1, "number of values to draw")
	if done, err := parse(fs, args, 2); done || err != nil {
		return err
	}

	start, err := strconv.ParseInt(fs.Arg(0), 10, 32)
	if err != nil {
		return fmt.Errorf("rand: start: %w", err)
	}
	end, err := strconv.ParseInt(fs.Arg(1), 10, 32)
	if err != nil {
		return fmt.Errorf("rand: end: %w", err)
	}

	s := *seed
	for range max(*count, 1) {
		v, err := random.GenIntOnInterval(int32(start), int32(end), s)
		if err != nil {
			return err
		}
		fmt.Fprintln(stdout, v)
		s = 0
	}
	return nil
}

func runCampaign(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs, g := newStoreFlagSet("campaign", "", stderr)
	configPath := fs.String("config", "", "YAML campaign configuration")
	payloadName := fs.String("payload", "", "blob holding the payload to encode (required)")
	codecName := fs.String("codec", "", "override the codec")
	mode := fs.String("mode", "", "override the mode: delete or mutate")
	trials := fs.Int("trials", 0, "override the number of trials")
	seed := fs.Uint64("seed", 0, "override the seed")
	concurrency := fs.Int("concurrency", 0, "override the number of concurrent trials")
	offsets := fs.Bool("offsets", false, "print the offsets that produced silent corruption")
	if done, err := parse(fs, args, 0); done || err != nil {
		return err
	}
	if *payloadName == "" {
		fs.Usage()
		return errors.New("campaign: --payload is required")
	}

	cfg := campaign.DefaultConfig()
	if *configPath != "" {
		loaded, err := campaign.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = *loaded
	}
	if fs.Changed("codec") {
		cfg.Codec = *codecName
	}
	if fs.Changed("mode") {
		cfg.Mode = campaign.Mode(*mode)
	}
	if fs.Changed("trials") {
		cfg.Trials = *trials
	}
	if fs.Changed("seed") {
		cfg.Seed = *seed
	}
	if fs.Changed("concurrency") {
		cfg.Concurrency = *concurrency
	}

	logger, err := g.logger(stderr)
	if err != nil {
		return err
	}
	store, err := g.openStore(ctx)
	if err != nil {
		return err
	}
	payload, err := blobstore.ReadAll(ctx, store, *payloadName)
	if err != nil {
		return err
	}

	sum, err := campaign.Run(ctx, cfg, payload, campaign.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Fprintln(stdout, sum)
	if *offsets {
		fmt.Fprintln(stdout, sum.SilentOffsets.ToArray())
	}
	return nil
}
