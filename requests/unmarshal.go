package requests

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/tilefs"
	"github.com/brettbedarf/tilefs/filesystem"
	"github.com/brettbedarf/tilefs/internal/util"
)

// UnmarshalNodeRequest parses a single JSON node definition
func UnmarshalNodeRequest(data []byte) (*tilefs.NodeRequest, error) {
	var dto NodeRequestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return nil, err
	}
	return convertNodeDTO(dto)
}

// UnmarshalNodeRequests parses a list of node definitions. ext selects the
// format the same way config files do: ".yaml"/".yml" or ".json".
func UnmarshalNodeRequests(data []byte, ext string) ([]*tilefs.NodeRequest, error) {
	var dtos []NodeRequestDTO
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &dtos); err != nil {
			return nil, err
		}
	case ".json":
		if err := json.Unmarshal(data, &dtos); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown node definitions file extension %q", ext)
	}

	reqs := make([]*tilefs.NodeRequest, 0, len(dtos))
	for i, dto := range dtos {
		req, err := convertNodeDTO(dto)
		if err != nil {
			return nil, fmt.Errorf("node definition %d: %w", i, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}

// LoadNodeRequestsFile reads node definitions from a YAML or JSON file
func LoadNodeRequestsFile(path string) ([]*tilefs.NodeRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return UnmarshalNodeRequests(data, filepath.Ext(path))
}

// Conversion logic with defaults in the unmarshaling layer
func convertNodeDTO(dto NodeRequestDTO) (*tilefs.NodeRequest, error) {
	if !filesystem.IsValid(dto.Path) {
		return nil, fmt.Errorf("%w: %q", tilefs.ErrInvalidPath, dto.Path)
	}
	if dto.Content != nil && filesystem.Classify(dto.Path) != filesystem.FileType {
		return nil, fmt.Errorf("content given for folder %q", dto.Path)
	}

	return &tilefs.NodeRequest{
		ID:        util.ValueOrDefault(dto.ID, uuid.NewString()),
		Path:      dto.Path,
		Hidden:    util.ValueOrDefault(dto.Hidden, false),
		Temporary: util.ValueOrDefault(dto.Temporary, false),
		Content:   dto.Content,
	}, nil
}
