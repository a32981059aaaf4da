package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fetchd-io/fetchd/pkg/fra"
	"github.com/fetchd-io/fetchd/pkg/fra/fraxdr"
	"github.com/fetchd-io/fetchd/pkg/timecal"
)

// recordView is the YAML projection of a single directory record.
type recordView struct {
	Index     int      `yaml:"index"`
	DirAlias  string   `yaml:"dir_alias"`
	HostAlias string   `yaml:"host_alias,omitempty"`
	URL       string   `yaml:"url,omitempty"`
	DirID     uint32   `yaml:"dir_id"`
	Status    uint8    `yaml:"status"`
	Priority  string   `yaml:"priority"`
	Schedule  []string `yaml:"schedule,omitempty"`
	Options   []string `yaml:"options,omitempty"`
}

type fileView struct {
	Path     string       `yaml:"path"`
	Version  uint8        `yaml:"version"`
	Features uint8        `yaml:"features"`
	PageSize int32        `yaml:"page_size,omitempty"`
	Records  []recordView `yaml:"records"`
}

// readArea loads every record from a retrieve area file without
// touching it. The file is read as-is, whatever its version.
func readArea(path string) (fra.Header, []fra.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fra.Header{}, nil, err
	}
	if len(data) < 8 {
		return fra.Header{}, nil, fmt.Errorf("%s: too small to hold a header", path)
	}

	version := fra.PeekVersion(data)
	if version > fra.CurrentVersion {
		return fra.Header{}, nil, fmt.Errorf("%s: unknown format version %d", path, version)
	}
	hdr := fra.ReadHeader(data)

	want := fra.FileSize(version, int(hdr.NumRecords))
	if int64(len(data)) < want {
		return fra.Header{}, nil, fmt.Errorf("%s: %d bytes, expected at least %d for %d records",
			path, len(data), want, hdr.NumRecords)
	}

	recordSize := fra.RecordSize(version)
	records := make([]fra.Record, hdr.NumRecords)
	for i := range records {
		off := fra.HeaderSize(version) + i*recordSize
		records[i] = fra.DecodeRecord(data[off:off+recordSize], version)
	}
	return hdr, records, nil
}

func view(path string, hdr fra.Header, records []fra.Record) fileView {
	fv := fileView{
		Path:     path,
		Version:  hdr.Version,
		Features: hdr.Features,
		PageSize: hdr.PageSize,
	}
	for i := range records {
		rec := &records[i]
		rv := recordView{
			Index:     i,
			DirAlias:  rec.DirAlias,
			HostAlias: rec.HostAlias,
			URL:       rec.URL,
			DirID:     rec.DirID,
			Status:    rec.DirStatus,
			Priority:  string(rec.Priority),
		}
		for j := 0; j < int(rec.NoOfTimeEntries) && j < len(rec.TimeEntries); j++ {
			rv.Schedule = append(rv.Schedule, timecal.Format(&rec.TimeEntries[j]))
		}
		var opts fra.DirOptionsText
		fra.ExtractOptions(rec, &opts)
		rv.Options = opts.Lines()
		fv.Records = append(fv.Records, rv)
	}
	return fv
}

func printText(fv fileView) {
	fmt.Printf("%s: version %d, features %#x, %d records\n",
		fv.Path, fv.Version, fv.Features, len(fv.Records))
	if fv.PageSize != 0 {
		fmt.Printf("page size: %d\n", fv.PageSize)
	}
	for _, rv := range fv.Records {
		fmt.Printf("\n[%d] %s (id %d)\n", rv.Index, rv.DirAlias, rv.DirID)
		if rv.URL != "" {
			fmt.Printf("    url: %s\n", rv.URL)
		}
		fmt.Printf("    status: %d  priority: %s\n", rv.Status, rv.Priority)
		for _, s := range rv.Schedule {
			fmt.Printf("    schedule: %s\n", s)
		}
		for _, line := range rv.Options {
			fmt.Printf("    %s\n", line)
		}
	}
}

func main() {
	asYAML := flag.Bool("yaml", false, "Print the area as YAML")
	asXDR := flag.String("xdr", "", "Write a portable XDR dump of the area to the given file")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s [-yaml] [-xdr FILE] AREA\n", os.Args[0])
		os.Exit(2)
	}
	path := flag.Arg(0)

	hdr, records, err := readArea(path)
	if err != nil {
		log.Fatalf("Failed to read retrieve area: %v", err)
	}

	if *asXDR != "" {
		out, err := os.Create(*asXDR)
		if err != nil {
			log.Fatalf("Failed to create %s: %v", *asXDR, err)
		}
		if err := fraxdr.Write(out, records); err != nil {
			out.Close()
			log.Fatalf("Failed to write XDR dump: %v", err)
		}
		if err := out.Close(); err != nil {
			log.Fatalf("Failed to close %s: %v", *asXDR, err)
		}
		fmt.Printf("wrote %d records to %s\n", len(records), *asXDR)
		return
	}

	fv := view(path, hdr, records)
	if *asYAML {
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(fv); err != nil {
			log.Fatalf("Failed to encode YAML: %v", err)
		}
		enc.Close()
		return
	}
	printText(fv)
}
