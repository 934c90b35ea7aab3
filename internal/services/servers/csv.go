package servers

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/j-veylop/shlink-dashboard-tui/internal/logger"
	"github.com/j-veylop/shlink-dashboard-tui/internal/models"
)

var csvHeader = []string{"name", "url", "apiKey"}

// ImportResult summarizes an Import.
type ImportResult struct {
	Imported []models.Server
	Skipped  int
}

// Import reads profiles from CSV with a name,url,apiKey header. Column order
// follows the header. Profiles that already exist are skipped.
func (s *Service) Import(r io.Reader) (ImportResult, error) {
	records, err := ParseCSV(r)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	before := len(s.servers)
	var result ImportResult
	for _, record := range records {
		added, err := s.addLocked(record)
		if errors.Is(err, ErrDuplicate) {
			result.Skipped++
			continue
		}
		if err != nil {
			s.servers = s.servers[:before]
			return ImportResult{}, err
		}
		result.Imported = append(result.Imported, added)
	}

	if len(result.Imported) == 0 {
		return result, nil
	}

	if err := s.saveLocked(); err != nil {
		s.servers = s.servers[:before]
		return ImportResult{}, fmt.Errorf("failed to save servers: %w", err)
	}

	logger.Info("Imported servers", "imported", len(result.Imported), "skipped", result.Skipped)
	s.sendEvent(Event{Type: EventServersChanged})
	return result, nil
}

// Export writes every profile as CSV with a name,url,apiKey header.
func (s *Service) Export(w io.Writer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, srv := range s.List() {
		if err := cw.Write([]string{srv.Name, srv.URL, srv.APIKey}); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ParseCSV decodes profiles from CSV. The header must name the name, url
// and apiKey columns, in any order and case.
func ParseCSV(r io.Reader) ([]models.Server, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("csv file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, required := range csvHeader {
		if _, ok := cols[strings.ToLower(required)]; !ok {
			return nil, fmt.Errorf("csv header is missing the %q column", required)
		}
	}

	var servers []models.Server
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv line %d: %w", line, err)
		}

		srv := models.Server{
			Name:   row[cols["name"]],
			URL:    row[cols["url"]],
			APIKey: row[cols["apikey"]],
		}
		if _, err := normalize(srv); err != nil {
			return nil, fmt.Errorf("csv line %d: %w", line, err)
		}
		servers = append(servers, srv)
	}
	return servers, nil
}
