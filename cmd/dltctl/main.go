package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"example.com/dltgate/internal/capture"
	"example.com/dltgate/internal/common"
	"example.com/dltgate/internal/crypto"
	"example.com/dltgate/internal/dict"
	"example.com/dltgate/internal/export"
	"example.com/dltgate/internal/manifest"
	"example.com/dltgate/internal/report"
	"example.com/dltgate/internal/rules"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	cmd := os.Args[1]
	switch cmd {
	case "scan":
		scanCmd(os.Args[2:])
	case "validate":
		validateCmd(os.Args[2:])
	case "report":
		reportCmd(os.Args[2:])
	case "export":
		exportCmd(os.Args[2:])
	case "manifest":
		manifestCmd(os.Args[2:])
	case "verify-signature":
		verifySignatureCmd(os.Args[2:])
	case "batch":
		batchCmd(os.Args[2:])
	case "rulepack":
		rulepackCmd(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Printf(`dltctl %s (built %s) <command> [options]

Commands:
  scan      --in <file.dlt> [--strict] [--index <index.json>] [--metrics] [--progress]
  validate  --in <file.dlt> --profile <profile> [--rules <rulepack.json> | --rulepack-id <id> [--rulepack-version <version>]] --out <diagnostics.jsonl> --acceptance <acceptance.json>
  report    --acceptance <acceptance.json> --pdf <report.pdf> [--lang <en|tr>] [--manifest-hash <sha256>]
  export    --in <file.dlt> --out <messages.cbor> [--dict <catalog.json>] [--max <n>]
  manifest  --inputs <comma-separated> --out <manifest.json> [--sign --key <key.pem> --cert <cert.pem> --jws-out <file>]
  verify-signature --manifest <manifest.json> --jws <signature.jws> --cert <cert.pem>
  batch     --in <dir> --profile <profile> [--rules <rulepack.json>] --out-dir <dir>
  rulepack  <install|list|remove|verify|set-default> [...]
`, version, buildDate)
}

func scanCmd(args []string) {
	fs := flag.NewFlagSet("scan", flag.ExitOnError)
	in := fs.String("in", "", "input .dlt storage file")
	strict := fs.Bool("strict", false, "stop at the first framing error instead of resyncing")
	indexOut := fs.String("index", "", "write the file index as JSON")
	metricsFlag := fs.Bool("metrics", false, "print scan throughput metrics")
	progressFlag := fs.Bool("progress", false, "display scan progress updates")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
	}

	newScanner := capture.NewScanner
	if *strict {
		newScanner = capture.NewStrictScanner
	}
	sc, err := newScanner(*in)
	if err != nil {
		fmt.Println("open:", err)
		os.Exit(1)
	}
	defer sc.Close()
	if metrics != nil {
		sc.SetMetrics(metrics)
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}

	var scanErr error
	for {
		if _, _, err := sc.Next(); err != nil {
			if !errors.Is(err, io.EOF) {
				scanErr = err
			}
			break
		}
	}
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}

	idx := sc.Index()
	fmt.Printf("File: %s\n", idx.Path)
	fmt.Printf("Messages: %d\n", len(idx.Messages))
	var ecus []string
	for _, id := range idx.EcuIDs() {
		ecus = append(ecus, strings.TrimRight(string(id[:]), "\x00"))
	}
	fmt.Printf("ECUs: %s\n", strings.Join(ecus, ", "))
	fmt.Printf("Pattern seeks: %d\n", idx.PatternSeeks)
	fmt.Printf("Truncated: %v\n", idx.Truncated)
	if scanErr != nil && !errors.Is(scanErr, io.ErrUnexpectedEOF) {
		fmt.Println("scan stopped:", scanErr)
	}

	if *indexOut != "" {
		b, err := json.MarshalIndent(indexJSON(idx), "", "  ")
		if err != nil {
			fmt.Println("marshal index:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*indexOut, b, 0o644); err != nil {
			fmt.Println("write index:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *indexOut)
	}
	if metrics != nil && *metricsFlag {
		printMetrics(metrics)
	}
	if scanErr != nil && *strict {
		os.Exit(1)
	}
}

type indexMessageJSON struct {
	Offset  int64  `json:"offset"`
	Counter uint8  `json:"counter"`
	App     string `json:"app,omitempty"`
	Ctx     string `json:"ctx,omitempty"`
	Kind    string `json:"kind,omitempty"`
	Verbose bool   `json:"verbose"`
	Error   string `json:"decodeError,omitempty"`
}

type indexFileJSON struct {
	Path         string             `json:"path"`
	TotalBytes   int64              `json:"totalBytes"`
	PatternSeeks int                `json:"patternSeeks"`
	Truncated    bool               `json:"truncated"`
	Messages     []indexMessageJSON `json:"messages"`
}

func indexJSON(idx capture.FileIndex) indexFileJSON {
	out := indexFileJSON{
		Path:         idx.Path,
		TotalBytes:   idx.TotalBytes,
		PatternSeeks: idx.PatternSeeks,
		Truncated:    idx.Truncated,
	}
	for _, m := range idx.Messages {
		entry := indexMessageJSON{
			Offset:  m.Offset,
			Counter: m.Counter,
			App:     strings.TrimRight(string(m.ApplicationID[:]), "\x00"),
			Ctx:     strings.TrimRight(string(m.ContextID[:]), "\x00"),
			Verbose: m.Verbose,
			Error:   m.DecodeError,
		}
		if m.TypeValid {
			entry.Kind = m.Kind.String()
		}
		out.Messages = append(out.Messages, entry)
	}
	return out
}

func printMetrics(metrics *common.Metrics) {
	snap := metrics.Snapshot()
	throughputBps := snap.ThroughputBytesPerSecond()
	fmt.Printf("Metrics: duration=%s messages=%d seeks=%d processed=%s throughput=%.2f MB/s\n",
		snap.Duration.Round(10*time.Millisecond),
		snap.Messages,
		snap.PatternSeeks,
		common.FormatBytes(snap.Bytes),
		throughputBps/1_000_000,
	)
}

func validateCmd(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	in := fs.String("in", "", "input .dlt storage file")
	profile := fs.String("profile", "dlt-v1", "profile")
	rulesPath := fs.String("rules", "", "rulepack.json")
	rulePackID := fs.String("rulepack-id", "", "installed rule pack identifier")
	rulePackVersion := fs.String("rulepack-version", "", "installed rule pack version")
	allowUnsigned := fs.Bool("allow-unsigned-rulepack", false, "allow validation with unsigned rule packs")
	outDiag := fs.String("out", "diagnostics.jsonl", "diagnostics output")
	outAcc := fs.String("acceptance", "acceptance_report.json", "acceptance json")
	metricsFlag := fs.Bool("metrics", false, "print validation throughput metrics")
	progressFlag := fs.Bool("progress", false, "display validation progress updates")
	fs.Parse(args)

	if *in == "" {
		fmt.Println("required: --in")
		os.Exit(1)
	}
	if *rulesPath != "" && *rulePackID != "" {
		fmt.Println("--rules and --rulepack-id cannot be used together")
		os.Exit(1)
	}
	if *rulePackVersion != "" && *rulePackID == "" {
		fmt.Println("--rulepack-version requires --rulepack-id")
		os.Exit(1)
	}

	rp, source, err := rules.ResolveRulePack(rules.RulePackRequest{
		Path:          *rulesPath,
		RulePackId:    *rulePackID,
		Version:       *rulePackVersion,
		Profile:       *profile,
		AllowUnsigned: *allowUnsigned,
	})
	if err != nil {
		fmt.Println("resolve rulepack:", err)
		os.Exit(1)
	}
	if source.FromRepository {
		fmt.Printf("Using rule pack %s@%s (profile %s)\n", source.RulePackId, source.Version, rp.Profile)
		if source.Unsigned {
			fmt.Println("WARNING: rule pack is unsigned")
		}
	}

	var metrics *common.Metrics
	if *metricsFlag || *progressFlag {
		metrics = common.NewMetrics()
		metrics.Start()
	}
	var stopProgress func()
	if metrics != nil && *progressFlag {
		stopProgress = common.StartProgressPrinter(os.Stderr, metrics, 500*time.Millisecond)
	}
	idx, err := capture.Scan(*in, metrics)
	if stopProgress != nil {
		stopProgress()
	}
	if metrics != nil {
		metrics.Stop()
	}
	if err != nil {
		fmt.Println("scan:", err)
		os.Exit(1)
	}

	engine := rules.NewEngine(rp)
	diags, err := engine.Eval(&rules.Context{InputFile: *in, Profile: *profile, Index: &idx})
	if err != nil {
		fmt.Println("eval:", err)
		os.Exit(1)
	}

	if err := engine.WriteDiagnosticsNDJSON(*outDiag); err != nil {
		fmt.Println("write diags:", err)
		os.Exit(1)
	}
	rep := engine.MakeAcceptance()
	if err := report.SaveAcceptanceJSON(rep, *outAcc); err != nil {
		fmt.Println("write report:", err)
		os.Exit(1)
	}
	fmt.Printf("PASS=%v, errors=%d, warnings=%d, diagnostics=%d\n",
		rep.Summary.Pass, rep.Summary.Errors, rep.Summary.Warnings, len(diags))
	if metrics != nil && *metricsFlag {
		printMetrics(metrics)
	}
}

func reportCmd(args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	accPath := fs.String("acceptance", "", "acceptance_report.json")
	pdfPath := fs.String("pdf", "", "output acceptance report PDF")
	lang := fs.String("lang", "", "report language (en, tr)")
	manifestHash := fs.String("manifest-hash", "", "manifest sha256 to embed as QR code")
	fs.Parse(args)

	if *accPath == "" || *pdfPath == "" {
		fmt.Println("required: --acceptance, --pdf")
		os.Exit(1)
	}
	rep, err := report.LoadAcceptanceJSON(*accPath)
	if err != nil {
		fmt.Println("load acceptance:", err)
		os.Exit(1)
	}
	language, err := report.ParseLanguage(*lang)
	if err != nil {
		fmt.Println("language:", err)
		os.Exit(1)
	}
	opts := report.PDFOptions{Language: language, ManifestHash: *manifestHash}
	if err := report.SaveAcceptancePDFOptions(rep, opts, *pdfPath); err != nil {
		fmt.Println("write pdf:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote PDF:", *pdfPath)
}

func exportCmd(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	in := fs.String("in", "", "input .dlt storage file")
	out := fs.String("out", "", "output CBOR file")
	dictPath := fs.String("dict", "", "non verbose message catalog JSON")
	max := fs.Int("max", 0, "maximum messages to export (0 = all)")
	fs.Parse(args)

	if *in == "" || *out == "" {
		fmt.Println("required: --in, --out")
		os.Exit(1)
	}
	opts := export.Options{MaxMessages: *max}
	if *dictPath != "" {
		catalog, err := dict.EnsureLoaded(*dictPath)
		if err != nil {
			fmt.Println("catalog:", err)
			os.Exit(1)
		}
		opts.Catalog = catalog
	}
	n, err := export.WriteFile(*in, *out, opts)
	if err != nil {
		fmt.Println("export:", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d message(s) to %s\n", n, *out)
}

func manifestCmd(args []string) {
	fs := flag.NewFlagSet("manifest", flag.ExitOnError)
	inputs := fs.String("inputs", "", "comma-separated paths")
	out := fs.String("out", "manifest.json", "output json")
	sign := fs.Bool("sign", false, "sign manifest (detached JWS over JSON)")
	keyPath := fs.String("key", "", "PEM private key for signing (requires --sign)")
	certPath := fs.String("cert", "", "PEM certificate describing signer (requires --sign)")
	jwsOut := fs.String("jws-out", "", "output JWS file (defaults to manifest path with .jws)")
	fs.Parse(args)

	if *inputs == "" {
		fmt.Println("required: --inputs")
		os.Exit(1)
	}

	var paths []string
	for _, p := range strings.Split(*inputs, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, p)
	}
	if len(paths) == 0 {
		fmt.Println("no input paths specified")
		os.Exit(1)
	}

	m, err := manifest.Build(paths)
	if err != nil {
		fmt.Println("manifest build:", err)
		os.Exit(1)
	}

	if !*sign {
		if err := manifest.Save(m, *out); err != nil {
			fmt.Println("manifest save:", err)
			os.Exit(1)
		}
		fmt.Println("Wrote", *out)
		return
	}

	if *keyPath == "" || *certPath == "" {
		fmt.Println("--sign requires --key and --cert")
		os.Exit(1)
	}
	keyBytes, err := os.ReadFile(*keyPath)
	if err != nil {
		fmt.Println("read key:", err)
		os.Exit(1)
	}
	certBytes, err := os.ReadFile(*certPath)
	if err != nil {
		fmt.Println("read cert:", err)
		os.Exit(1)
	}
	cert, err := crypto.ParseCertificatePEM(certBytes)
	if err != nil {
		fmt.Println("parse cert:", err)
		os.Exit(1)
	}

	sigPath := *jwsOut
	if sigPath == "" {
		base := *out
		ext := filepath.Ext(base)
		if ext != "" {
			sigPath = base[:len(base)-len(ext)] + ".jws"
		} else {
			sigPath = base + ".jws"
		}
	}

	m.Signature = &manifest.Signature{
		Type:          "jws-detached",
		CertSubject:   cert.Subject.String(),
		Issuer:        cert.Issuer.String(),
		SignatureFile: sigPath,
	}

	payload, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		fmt.Println("manifest marshal:", err)
		os.Exit(1)
	}
	jws, err := crypto.SignDetachedJWS(payload, keyBytes, certBytes)
	if err != nil {
		fmt.Println("manifest sign:", err)
		os.Exit(1)
	}
	jwsBytes, err := json.MarshalIndent(jws, "", "  ")
	if err != nil {
		fmt.Println("jws marshal:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(sigPath, jwsBytes, 0o644); err != nil {
		fmt.Println("write jws:", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		fmt.Println("write manifest:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", *out)
	fmt.Println("Wrote signature", sigPath)
}

func verifySignatureCmd(args []string) {
	fs := flag.NewFlagSet("verify-signature", flag.ExitOnError)
	manifestPath := fs.String("manifest", "", "manifest JSON file")
	jwsPath := fs.String("jws", "", "manifest JWS signature file")
	certPath := fs.String("cert", "", "signer certificate (PEM)")
	fs.Parse(args)

	if *manifestPath == "" || *jwsPath == "" || *certPath == "" {
		fmt.Println("required: --manifest, --jws, --cert")
		os.Exit(1)
	}

	manifestBytes, err := os.ReadFile(*manifestPath)
	if err != nil {
		fmt.Println("read manifest:", err)
		os.Exit(1)
	}
	jwsBytes, err := os.ReadFile(*jwsPath)
	if err != nil {
		fmt.Println("read jws:", err)
		os.Exit(1)
	}
	certBytes, err := os.ReadFile(*certPath)
	if err != nil {
		fmt.Println("read cert:", err)
		os.Exit(1)
	}

	var jwsObj crypto.JWS
	if err := json.Unmarshal(jwsBytes, &jwsObj); err != nil {
		fmt.Println("parse jws:", err)
		os.Exit(1)
	}
	if err := crypto.VerifyDetachedJWS(manifestBytes, jwsObj, certBytes); err != nil {
		fmt.Println("verify signature:", err)
		os.Exit(1)
	}
	fmt.Println("Signature OK")
}

func batchCmd(args []string) {
	fs := flag.NewFlagSet("batch", flag.ExitOnError)
	inDir := fs.String("in", ".", "input directory")
	profile := fs.String("profile", "dlt-v1", "profile")
	rulesPath := fs.String("rules", "", "rulepack.json")
	outDir := fs.String("out-dir", "out", "results directory")
	fs.Parse(args)

	rp, _, err := rules.ResolveRulePack(rules.RulePackRequest{
		Path:    *rulesPath,
		Profile: *profile,
	})
	if err != nil {
		fmt.Println("resolve rulepack:", err)
		os.Exit(1)
	}

	inputs, err := filepath.Glob(filepath.Join(*inDir, "*.dlt"))
	if err != nil {
		fmt.Println("list inputs:", err)
		os.Exit(1)
	}
	if len(inputs) == 0 {
		fmt.Println("no .dlt files found in", *inDir)
		os.Exit(1)
	}
	sort.Strings(inputs)

	failures := 0
	for _, in := range inputs {
		base := strings.TrimSuffix(filepath.Base(in), ".dlt")
		dir := filepath.Join(*outDir, base)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Println("create output dir:", err)
			os.Exit(1)
		}
		engine := rules.NewEngine(rp)
		if _, err := engine.Eval(&rules.Context{InputFile: in, Profile: *profile}); err != nil {
			fmt.Printf("%s: eval: %v\n", in, err)
			failures++
			continue
		}
		if err := engine.WriteDiagnosticsNDJSON(filepath.Join(dir, "diagnostics.jsonl")); err != nil {
			fmt.Printf("%s: write diags: %v\n", in, err)
			failures++
			continue
		}
		rep := engine.MakeAcceptance()
		if err := report.SaveAcceptanceJSON(rep, filepath.Join(dir, "acceptance.json")); err != nil {
			fmt.Printf("%s: write report: %v\n", in, err)
			failures++
			continue
		}
		fmt.Printf("%s: PASS=%v, errors=%d, warnings=%d\n",
			in, rep.Summary.Pass, rep.Summary.Errors, rep.Summary.Warnings)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func rulepackCmd(args []string) {
	if len(args) == 0 {
		rulepackUsage()
		os.Exit(1)
	}
	sub := args[0]
	switch sub {
	case "install":
		rulepackInstallCmd(args[1:])
	case "list":
		rulepackListCmd(args[1:])
	case "remove":
		rulepackRemoveCmd(args[1:])
	case "verify":
		rulepackVerifyCmd(args[1:])
	case "set-default":
		rulepackSetDefaultCmd(args[1:])
	default:
		fmt.Println("unknown rulepack subcommand")
		rulepackUsage()
		os.Exit(1)
	}
}

func rulepackUsage() {
	fmt.Println("rulepack commands:")
	fmt.Println("  install --file <package.rpkg.zip> [--allow-unsigned]")
	fmt.Println("  list")
	fmt.Println("  remove --id <rulepack> --version <version>")
	fmt.Println("  verify --id <rulepack> --version <version>")
	fmt.Println("  set-default --profile <profile> --id <rulepack> --version <version>")
}

func rulepackInstallCmd(args []string) {
	fs := flag.NewFlagSet("rulepack install", flag.ExitOnError)
	file := fs.String("file", "", "path to .rpkg.zip package")
	allowUnsigned := fs.Bool("allow-unsigned", false, "allow installing unsigned packages")
	fs.Parse(args)

	if *file == "" {
		fmt.Println("required: --file")
		os.Exit(1)
	}
	repo, err := rules.DefaultRepository()
	if err != nil {
		fmt.Println("open repository:", err)
		os.Exit(1)
	}
	installed, err := repo.InstallPackage(*file, *allowUnsigned)
	if err != nil {
		fmt.Println("install rule pack:", err)
		os.Exit(1)
	}
	fmt.Printf("Installed %s@%s (profile %s)\n",
		installed.RulePack.RulePackId, installed.RulePack.Version, installed.RulePack.Profile)
	if installed.Signed {
		if installed.Signer != "" {
			fmt.Printf("Signer: %s\n", installed.Signer)
		}
	} else {
		fmt.Println("Package installed without signature")
	}
}

func rulepackListCmd(args []string) {
	fs := flag.NewFlagSet("rulepack list", flag.ExitOnError)
	fs.Parse(args)
	repo, err := rules.DefaultRepository()
	if err != nil {
		fmt.Println("open repository:", err)
		os.Exit(1)
	}
	entries, err := repo.ListInstalled()
	if err != nil {
		fmt.Println("list rule packs:", err)
		os.Exit(1)
	}
	defaults, err := repo.Defaults()
	if err != nil {
		fmt.Println("load defaults:", err)
		os.Exit(1)
	}
	if len(entries) == 0 {
		fmt.Println("No rule packs installed")
		return
	}
	byKey := make(map[string][]string)
	for profile, ref := range defaults {
		key := ref.RulePackId + "@" + ref.Version
		byKey[key] = append(byKey[key], profile)
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tVERSION\tPROFILE\tSIGNED\tDEFAULT FOR\tSIGNER")
	for _, entry := range entries {
		key := entry.RulePack.RulePackId + "@" + entry.RulePack.Version
		profiles := byKey[key]
		sort.Strings(profiles)
		signed := "yes"
		if !entry.Signed {
			signed = "no"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			entry.RulePack.RulePackId,
			entry.RulePack.Version,
			entry.RulePack.Profile,
			signed,
			strings.Join(profiles, ","),
			entry.Signer,
		)
	}
	w.Flush()
}

func rulepackRemoveCmd(args []string) {
	fs := flag.NewFlagSet("rulepack remove", flag.ExitOnError)
	id := fs.String("id", "", "rule pack identifier")
	version := fs.String("version", "", "rule pack version")
	fs.Parse(args)

	if *id == "" || *version == "" {
		fmt.Println("required: --id, --version")
		os.Exit(1)
	}
	repo, err := rules.DefaultRepository()
	if err != nil {
		fmt.Println("open repository:", err)
		os.Exit(1)
	}
	if err := repo.Remove(*id, *version); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Println("rule pack not found")
		} else {
			fmt.Println("remove rule pack:", err)
		}
		os.Exit(1)
	}
	fmt.Printf("Removed %s@%s\n", *id, *version)
}

func rulepackVerifyCmd(args []string) {
	fs := flag.NewFlagSet("rulepack verify", flag.ExitOnError)
	id := fs.String("id", "", "rule pack identifier")
	version := fs.String("version", "", "rule pack version")
	fs.Parse(args)

	if *id == "" || *version == "" {
		fmt.Println("required: --id, --version")
		os.Exit(1)
	}
	repo, err := rules.DefaultRepository()
	if err != nil {
		fmt.Println("open repository:", err)
		os.Exit(1)
	}
	_, source, err := repo.Load(*id, *version, false)
	if err != nil {
		fmt.Println("verify rule pack:", err)
		os.Exit(1)
	}
	msg := "Signature OK"
	if source.Signer != "" {
		msg += fmt.Sprintf(" (signed by %s)", source.Signer)
	}
	fmt.Println(msg)
}

func rulepackSetDefaultCmd(args []string) {
	fs := flag.NewFlagSet("rulepack set-default", flag.ExitOnError)
	profile := fs.String("profile", "", "profile name")
	id := fs.String("id", "", "rule pack identifier")
	version := fs.String("version", "", "rule pack version")
	fs.Parse(args)

	if *profile == "" || *id == "" || *version == "" {
		fmt.Println("required: --profile, --id, --version")
		os.Exit(1)
	}
	repo, err := rules.DefaultRepository()
	if err != nil {
		fmt.Println("open repository:", err)
		os.Exit(1)
	}
	rp, source, err := repo.Load(*id, *version, true)
	if err != nil {
		fmt.Println("load rule pack:", err)
		os.Exit(1)
	}
	if source.Unsigned {
		fmt.Println("WARNING: selected rule pack is unsigned")
	}
	if rp.Profile != "" && rp.Profile != *profile {
		fmt.Printf("Warning: rule pack profile is %s\n", rp.Profile)
	}
	if err := repo.SetDefaultForProfile(*profile, rules.RulePackRef{RulePackId: *id, Version: *version}); err != nil {
		fmt.Println("set default:", err)
		os.Exit(1)
	}
	fmt.Printf("Default for profile %s set to %s@%s\n", *profile, *id, *version)
}
