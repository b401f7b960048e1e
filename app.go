package main

import (
	"context"
	"log"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"girder/pkg/assembly"
	"girder/pkg/config"
	"girder/pkg/engine"
	"girder/pkg/kernel"
	"girder/pkg/kernel/sdfx"
	"girder/pkg/part"
	"girder/pkg/spatial"
	"girder/pkg/tessellate"
)

// App is the Wails backend. It owns the live assembly store and
// exposes command and query methods to the frontend via bindings.
type App struct {
	ctx    context.Context
	store  *assembly.Store
	engine *engine.Engine
	kernel kernel.Kernel
}

// NewApp creates a new App configured from the preferences file.
func NewApp() *App {
	return NewAppWithPrefs(config.Load())
}

// NewAppWithPrefs creates a new App with explicit preferences.
func NewAppWithPrefs(prefs config.Prefs) *App {
	store := assembly.New()
	store.SetPalette(prefs.Palette)
	return &App{
		store:  store,
		engine: engine.NewEngineWithTimeout(prefs.EvalTimeout()),
		kernel: sdfx.New(prefs.MeshCells),
	}
}

// startup is called by Wails on app startup. The context is saved so
// we can call Wails runtime methods later if needed.
func (a *App) startup(ctx context.Context) {
	a.ctx = ctx
}

// ---------------------------------------------------------------------------
// JSON data shapes for the frontend
// ---------------------------------------------------------------------------

// Vec3Data is a JSON-serializable 3-vector.
type Vec3Data struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// PartData is the frontend view of a part. Rotation crosses the
// boundary as Euler angles in degrees.
type PartData struct {
	ID       string   `json:"id"`
	Type     string   `json:"type"`
	Length   int      `json:"length,omitempty"`
	Position Vec3Data `json:"position"`
	Rotation Vec3Data `json:"rotation"`
	Color    string   `json:"color"`
}

// JointData is the frontend view of a joint.
type JointData struct {
	ID    string `json:"id"`
	PartA string `json:"partA"`
	HoleA int    `json:"holeA"`
	PartB string `json:"partB"`
	HoleB int    `json:"holeB"`
}

// HoleRefData identifies one hole on one part.
type HoleRefData struct {
	Part string `json:"part"`
	Hole int    `json:"hole"`
}

// StateData is the complete assembly state sent to the frontend.
type StateData struct {
	Parts        []PartData   `json:"parts"`
	Joints       []JointData  `json:"joints"`
	SelectedPart string       `json:"selectedPart,omitempty"`
	Pending      *HoleRefData `json:"pendingHole,omitempty"`
	Version      uint64       `json:"version"`
}

// PartPatch carries a partial part update; nil fields are unchanged.
// Rotation is Euler angles in degrees.
type PartPatch struct {
	Length   *int      `json:"length,omitempty"`
	Position *Vec3Data `json:"position,omitempty"`
	Rotation *Vec3Data `json:"rotation,omitempty"`
	Color    *string   `json:"color,omitempty"`
}

// EvalErrorData is a JSON-serializable eval error for the frontend.
type EvalErrorData struct {
	Line    int    `json:"line"`
	Col     int    `json:"col"`
	Message string `json:"message"`
}

// EvalResult is the full result of a script evaluation.
type EvalResult struct {
	State  *StateData      `json:"state,omitempty"`
	Meshes []*kernel.Mesh  `json:"meshes"`
	Errors []EvalErrorData `json:"errors"`
}

func toVec3Data(v v3.Vec) Vec3Data {
	return Vec3Data{X: v.X, Y: v.Y, Z: v.Z}
}

func eulerDegrees(r spatial.Rotation) Vec3Data {
	x, y, z := r.Euler()
	return Vec3Data{X: x * 180 / math.Pi, Y: y * 180 / math.Pi, Z: z * 180 / math.Pi}
}

func fromEulerDegrees(v Vec3Data) spatial.Rotation {
	return spatial.FromEuler(v.X*math.Pi/180, v.Y*math.Pi/180, v.Z*math.Pi/180)
}

func toStateData(snap assembly.Snapshot) *StateData {
	state := &StateData{
		Parts:   make([]PartData, 0, len(snap.Parts)),
		Joints:  make([]JointData, 0, len(snap.Joints)),
		Version: snap.Version,
	}
	for i := range snap.Parts {
		p := &snap.Parts[i]
		state.Parts = append(state.Parts, PartData{
			ID:       string(p.ID),
			Type:     p.Type.String(),
			Length:   p.Length,
			Position: toVec3Data(p.Position),
			Rotation: eulerDegrees(p.Rotation),
			Color:    p.Color,
		})
	}
	for i := range snap.Joints {
		j := &snap.Joints[i]
		state.Joints = append(state.Joints, JointData{
			ID:    string(j.ID),
			PartA: string(j.PartA),
			HoleA: j.HoleA,
			PartB: string(j.PartB),
			HoleB: j.HoleB,
		})
	}
	if !snap.SelectedPart.IsZero() {
		state.SelectedPart = string(snap.SelectedPart)
	}
	if snap.Pending != nil {
		state.Pending = &HoleRefData{Part: string(snap.Pending.Part), Hole: snap.Pending.Hole}
	}
	return state
}

// ---------------------------------------------------------------------------
// Command bindings
// ---------------------------------------------------------------------------

// AddPart places a new part and returns its id. Rotation-free; use
// RotatePart afterwards if needed.
func (a *App) AddPart(partType string, length int, at Vec3Data, color string) (string, error) {
	t, err := part.ParseType(partType)
	if err != nil {
		return "", err
	}
	id, err := a.store.AddPart(t, assembly.InitialProps{
		Length:   length,
		Position: v3.Vec{X: at.X, Y: at.Y, Z: at.Z},
		Color:    color,
	})
	if err != nil {
		return "", err
	}
	return string(id), nil
}

// UpdatePart applies a partial update to a part.
func (a *App) UpdatePart(id string, patch PartPatch) error {
	props := assembly.PartialProps{
		Length: patch.Length,
		Color:  patch.Color,
	}
	if patch.Position != nil {
		pos := v3.Vec{X: patch.Position.X, Y: patch.Position.Y, Z: patch.Position.Z}
		props.Position = &pos
	}
	if patch.Rotation != nil {
		rot := fromEulerDegrees(*patch.Rotation)
		props.Rotation = &rot
	}
	return a.store.UpdatePart(assembly.PartID(id), props)
}

// RemovePart deletes a part and cascades its joints.
func (a *App) RemovePart(id string) error {
	return a.store.RemovePart(assembly.PartID(id))
}

// RotatePart spins a part about its local Z axis by deltaDegrees,
// subject to joint constraints.
func (a *App) RotatePart(id string, deltaDegrees float64) error {
	return a.store.RotatePart(assembly.PartID(id), deltaDegrees*math.Pi/180)
}

// SelectPart sets the selected part; an empty id clears the selection.
func (a *App) SelectPart(id string) error {
	return a.store.SelectPart(assembly.PartID(id))
}

// SelectHole drives the hole-pairing state machine, snapping two parts
// together when the click completes a pairing.
func (a *App) SelectHole(id string, hole int) error {
	return a.store.SelectHole(assembly.PartID(id), hole)
}

// ResetSelection clears the selected part and any pending hole.
func (a *App) ResetSelection() {
	a.store.ResetSelection()
}

// ClearAll empties the assembly.
func (a *App) ClearAll() {
	a.store.ClearAll()
}

// ---------------------------------------------------------------------------
// Query bindings
// ---------------------------------------------------------------------------

// State returns the complete assembly state.
func (a *App) State() *StateData {
	return toStateData(a.store.Snapshot())
}

// Meshes tessellates the current assembly into render meshes.
func (a *App) Meshes() ([]*kernel.Mesh, error) {
	meshes, err := tessellate.Tessellate(a.store.Snapshot(), a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		return nil, err
	}
	return meshes, nil
}

// Validate reports consistency findings over the current assembly,
// rendered as strings for display.
func (a *App) Validate() []string {
	findings := assembly.Validate(a.store.Snapshot())
	out := make([]string, 0, len(findings))
	for _, f := range findings {
		out = append(out, f.Error())
	}
	return out
}

// EvaluateScript rebuilds the assembly from script source and returns
// the new state, its meshes, and any errors. On eval errors the live
// store is left untouched.
func (a *App) EvaluateScript(source string) EvalResult {
	result := EvalResult{
		Meshes: []*kernel.Mesh{},
		Errors: []EvalErrorData{},
	}

	store, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Col:     e.Col,
				Message: e.Message,
			})
		}
		return result
	}

	a.store = store

	meshes, err := tessellate.Tessellate(store.Snapshot(), a.kernel)
	if err != nil {
		log.Printf("Tessellate error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "tessellation failed: " + err.Error(),
		})
		return result
	}

	result.State = toStateData(store.Snapshot())
	if meshes != nil {
		result.Meshes = meshes
	}
	return result
}
