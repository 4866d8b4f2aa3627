package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/piwi3910/CratePack/internal/engine"
	"github.com/piwi3910/CratePack/internal/logging"
	"github.com/piwi3910/CratePack/internal/model"
)

var errBadRequest = errors.New("bad request")

// estimateSlack is the headroom, in percent, added to the bin estimate.
const estimateSlack = 15

// PackRequest describes a packing job. Boxes and Items may both be given;
// items are expanded and appended after the boxes with fresh ids. Fields of
// Settings left out of the JSON keep the server defaults.
type PackRequest struct {
	Boxes     []model.Box     `json:"boxes,omitempty"`
	Items     []model.Item    `json:"items,omitempty"`
	Container model.Container `json:"container"`
	Preset    string          `json:"preset,omitempty"`
	Settings  model.Settings  `json:"settings"`
}

// PackResponse is the result of a single ordering.
type PackResponse struct {
	Result    model.PackResult   `json:"result"`
	Fitness   float64            `json:"fitness"`
	Objective string             `json:"objective"`
	Estimate  model.LoadEstimate `json:"estimate"`
	Voids     []model.Void       `json:"voids"`
}

// decodePackRequest reads the body and resolves the container and boxes.
func (s *Server) decodePackRequest(w http.ResponseWriter, r *http.Request) (PackRequest, []model.Box, error) {
	req := PackRequest{Settings: s.defaults}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return req, nil, fmt.Errorf("%w: decode body: %v", errBadRequest, err)
	}

	if req.Preset != "" {
		preset := s.inventory.FindContainerByName(req.Preset)
		if preset == nil {
			return req, nil, fmt.Errorf("%w: unknown container preset %q", errBadRequest, req.Preset)
		}
		req.Container = preset.ToContainer()
	}
	if req.Container.Width == 0 && req.Container.Height == 0 && req.Container.Depth == 0 {
		return req, nil, errNoContainer
	}
	if !req.Settings.Strategy.Valid() {
		return req, nil, fmt.Errorf("%w: unknown strategy %q", engine.ErrInvalidConfig, req.Settings.Strategy)
	}

	boxes := make([]model.Box, 0, len(req.Boxes))
	boxes = append(boxes, req.Boxes...)
	next := 1
	for _, b := range boxes {
		if b.ID >= next {
			next = b.ID + 1
		}
	}
	for _, b := range model.ExpandItems(req.Items) {
		b.ID += next - 1
		boxes = append(boxes, b)
	}
	for _, b := range boxes {
		if b.Size.X <= 0 || b.Size.Y <= 0 || b.Size.Z <= 0 {
			return req, nil, fmt.Errorf("%w: box %d has a non-positive extent", errBadRequest, b.ID)
		}
	}
	return req, boxes, nil
}

func (s *Server) handlePack(w http.ResponseWriter, r *http.Request) {
	req, boxes, err := s.decodePackRequest(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger := logging.FromContext(r.Context())
	cfg := engine.NewSolverConfig(req.Container, req.Settings)
	result, err := engine.Pack(req.Settings.Strategy, cfg, boxes, logger)
	if err != nil {
		writeError(w, r, err)
		return
	}

	obj := engine.ObjectiveFor(req.Settings.Growing)
	voids := model.DetectAllVoids(result)
	if voids == nil {
		voids = []model.Void{}
	}
	writeJSON(w, http.StatusOK, PackResponse{
		Result:    result,
		Fitness:   engine.Fitness(obj, result, req.Container, len(boxes)),
		Objective: obj.String(),
		Estimate:  model.CalculateLoadEstimate(boxes, req.Container, estimateSlack),
		Voids:     voids,
	})
}

func (s *Server) handleStrategies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"strategies": model.Strategies(),
		"default":    s.defaults.Strategy,
	})
}

func (s *Server) handleContainers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.inventory.Containers)
}
