// Command tech2 talks to a Tech2 over a serial port: diagnostic session
// services, the download-mode bulk memory read, offline image processing
// and a standalone seed-to-key calculator.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/opentech2/go-tech2/download"
	"github.com/opentech2/go-tech2/image"
	"github.com/opentech2/go-tech2/protocol"
	"github.com/opentech2/go-tech2/seedkey"
	"github.com/opentech2/go-tech2/session"
	"github.com/opentech2/go-tech2/transport"
)

func main() {
	var (
		portName   = flag.String("port", "", "serial port (e.g. /dev/ttyUSB0, COM3)")
		baud       = flag.Int("baud", 0, "baud rate")
		levelName  = flag.String("level", "", "security access level: basic, intermediate, highest")
		debug      = flag.Bool("debug", false, "enable debug output")
		configPath = flag.String("config", "", "YAML config file")

		readVIN     = flag.Bool("vin", false, "read the VIN over the diagnostic session")
		readID      = flag.String("read-id", "", "read a data record by identifier (hex)")
		writeID     = flag.String("write-id", "", "write a data record by identifier (hex)")
		writeData   = flag.String("write-data", "", "data bytes for -write-id (hex, space separated)")
		routineID   = flag.String("routine", "", "execute a routine by identifier (hex)")
		routineArgs = flag.String("routine-params", "", "parameter bytes for -routine (hex, space separated)")
		resetType   = flag.String("reset", "", "reset the ECU: hard, keyoffon, soft")
		doDownload  = flag.Bool("download", false, "download the memory image")
		outPath     = flag.String("out", "tech2_data.bin", "output file for -download")
		seedOnly    = flag.Bool("seed-only", false, "download only the first chunk (seed region)")
		processPath = flag.String("process", "", "extract VIN/seed/key from a saved image file")
		calcKeySeed = flag.String("calc-key", "", "derive the key for a seed (hex or decimal)")
	)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		pterm.Error.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *portName != "" {
		cfg.Port = *portName
	}
	if *baud > 0 {
		cfg.Baud = *baud
	}
	if *levelName != "" {
		cfg.Level = *levelName
	}

	logger := newLogger(cfg.Log.Filename, *debug)

	// Offline operations need no port.
	switch {
	case *calcKeySeed != "":
		exit(runCalcKey(*calcKeySeed))
	case *processPath != "":
		exit(runProcess(*processPath, cfg.layout()))
	}

	if cfg.Port == "" {
		pterm.Error.Println("No serial port given (use -port or a config file)")
		flag.Usage()
		os.Exit(2)
	}

	level, err := parseLevel(cfg.Level)
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(2)
	}

	port, err := transport.Open(cfg.Port, cfg.Baud)
	if err != nil {
		pterm.Error.Printf("Failed to open %s: %v\n", cfg.Port, err)
		os.Exit(1)
	}

	if *doDownload || *seedOnly {
		err := runDownload(port, logger, cfg.layout(), *outPath, *seedOnly)
		port.Close()
		exit(err)
	}

	client := session.New(port,
		session.WithLogger(logger),
		session.WithRetries(cfg.Retries),
		session.WithAccessLevel(level))

	if err := client.Connect(); err != nil {
		port.Close()
		pterm.Error.Printf("Connect failed: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *resetType != "":
		err = runReset(client, *resetType)
	case *readVIN:
		err = withSecurity(client, func() error { return runReadVIN(client) })
	case *readID != "":
		err = withSecurity(client, func() error { return runReadID(client, *readID) })
	case *writeID != "":
		err = withSecurity(client, func() error { return runWriteID(client, *writeID, *writeData) })
	case *routineID != "":
		err = withSecurity(client, func() error { return runRoutine(client, *routineID, *routineArgs) })
	default:
		client.Disconnect()
		pterm.Warning.Println("No operation given")
		flag.Usage()
		os.Exit(2)
	}

	client.Disconnect()
	exit(err)
}

func exit(err error) {
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
	os.Exit(0)
}

// withSecurity brings the session up to security-granted before running
// the operation.
func withSecurity(client *session.Client, op func() error) error {
	if err := client.StartSession(); err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	if err := client.RequestSecurityAccess(); err != nil {
		return fmt.Errorf("security access: %w", err)
	}
	return op()
}

func runCalcKey(seedStr string) error {
	seed, err := parseUint16(seedStr)
	if err != nil {
		return fmt.Errorf("bad seed %q: %w", seedStr, err)
	}

	steps, err := seedkey.Trionic8Calc{}.ComputeSteps(int(seed))
	if err != nil {
		return err
	}
	for _, step := range steps {
		pterm.Info.Println(step.String())
	}
	pterm.Success.Printf("Seed 0x%04X -> Key 0x%04X\n", seed, steps[len(steps)-1].Value)
	return nil
}

func runProcess(path string, layout image.Layout) error {
	img, err := image.Load(path)
	if err != nil {
		return err
	}
	pterm.Info.Printf("Loaded %d bytes from %s\n", len(img), path)

	printInfo(layout.Parse(img))
	return nil
}

func runDownload(port transport.Port, logger download.Logger, layout image.Layout, outPath string, seedOnly bool) error {
	d := download.New(port,
		download.WithLogger(logger),
		download.WithSeedOnly(seedOnly),
		download.WithProgress(func(index, total, received int) {
			pterm.Info.Printf("Chunk %d/%d: %d bytes\n", index, total, received)
		}))

	if err := d.EnterDownloadMode(); err != nil {
		return err
	}
	img, err := d.Download()
	if err != nil {
		return err
	}

	if err := image.Save(outPath, img); err != nil {
		return fmt.Errorf("save image: %w", err)
	}
	pterm.Success.Printf("Saved %d bytes to %s\n", len(img), outPath)

	printInfo(layout.Parse(img))
	return nil
}

func printInfo(info image.Info) {
	if info.HasVIN {
		pterm.Success.Printf("VIN: %s\n", info.VIN)
	} else {
		pterm.Warning.Println("VIN: not found")
	}
	if info.HasSeed {
		pterm.Success.Printf("Seed: 0x%04X\n", info.Seed)
		if key, err := (seedkey.Trionic8Calc{}).Compute(int(info.Seed), protocol.LevelBasic); err == nil {
			pterm.Info.Printf("Derived key: 0x%04X\n", key)
		}
	} else {
		pterm.Warning.Println("Seed: not found")
	}
	if info.HasKey {
		pterm.Info.Printf("Stored key: 0x%04X\n", info.Key)
	}
}

func runReset(client *session.Client, name string) error {
	var resetType byte
	switch name {
	case "hard":
		resetType = protocol.ResetHard
	case "keyoffon":
		resetType = protocol.ResetKeyOffOn
	case "soft":
		resetType = protocol.ResetSoft
	default:
		return fmt.Errorf("unknown reset type %q", name)
	}

	if err := client.ECUReset(resetType); err != nil {
		return err
	}
	pterm.Success.Println("ECU reset")
	return nil
}

func runReadVIN(client *session.Client) error {
	vin, err := client.ReadVIN()
	if err != nil {
		return err
	}
	pterm.Success.Printf("VIN: %s\n", vin)
	return nil
}

func runReadID(client *session.Client, idStr string) error {
	id, err := parseUint16(idStr)
	if err != nil {
		return fmt.Errorf("bad identifier %q: %w", idStr, err)
	}

	data, err := client.ReadDataByIdentifier(id)
	if err != nil {
		return err
	}
	pterm.Success.Printf("0x%04X: % X\n", id, data)
	return nil
}

func runWriteID(client *session.Client, idStr, dataStr string) error {
	id, err := parseUint16(idStr)
	if err != nil {
		return fmt.Errorf("bad identifier %q: %w", idStr, err)
	}
	data, err := parseHexBytes(dataStr)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no data given (use -write-data)")
	}

	if err := client.WriteDataByIdentifier(id, data); err != nil {
		return err
	}
	pterm.Success.Printf("Wrote %d bytes to 0x%04X\n", len(data), id)
	return nil
}

func runRoutine(client *session.Client, idStr, paramsStr string) error {
	id, err := parseUint16(idStr)
	if err != nil {
		return fmt.Errorf("bad routine identifier %q: %w", idStr, err)
	}
	params, err := parseHexBytes(paramsStr)
	if err != nil {
		return err
	}

	results, err := client.ExecuteRoutine(id, params)
	if err != nil {
		return err
	}
	pterm.Success.Printf("Routine 0x%04X results: % X\n", id, results)
	return nil
}
