/* ---------------------------------------------------------------------------
** This software is in the public domain, furnished "as is", without technical
** support, and with no warranty, express or implied, as to its usefulness for
** any purpose.
** -------------------------------------------------------------------------*/

// Package inference runs a TensorFlow Lite model on an image and packs its
// outputs into the flat tensor layout the decoders read.
package inference

import (
	"bufio"
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"github.com/mattn/go-tflite"
	"github.com/mattn/go-tflite/delegates/edgetpu"
	"github.com/rs/zerolog/log"
	"gocv.io/x/gocv"
)

var (
	ErrModel       = errors.New("inference: cannot load model")
	ErrInterpreter = errors.New("inference: cannot create interpreter")
	ErrEmptyImage  = errors.New("inference: empty image")
)

// Options tunes the interpreter.
type Options struct {
	Threads int
	// EdgeTPU adds the first Edge TPU found as a delegate.
	EdgeTPU bool
}

// Runner owns a model and its interpreter. Run calls are serialized.
type Runner struct {
	mu     sync.Mutex
	model  *tflite.Model
	interp *tflite.Interpreter
}

// NewRunner loads modelPath and allocates its tensors.
func NewRunner(modelPath string, opts Options) (*Runner, error) {
	model := tflite.NewModelFromFile(modelPath)
	if model == nil {
		return nil, fmt.Errorf("%w: %s", ErrModel, modelPath)
	}

	options := tflite.NewInterpreterOptions()
	defer options.Delete()

	threads := opts.Threads
	if threads < 1 {
		threads = 1
	}
	options.SetNumThread(threads)

	if opts.EdgeTPU {
		devices, err := edgetpu.DeviceList()
		if err != nil {
			log.Warn().Err(err).Msg("Could not get EdgeTPU devices")
		}
		if len(devices) == 0 {
			log.Warn().Msg("No edge TPU devices found")
		} else {
			log.Info().Int("devices", len(devices)).Msg("Using edge TPU")
			options.AddDelegate(edgetpu.New(devices[0]))
		}
	}

	interp := tflite.NewInterpreter(model, options)
	if interp == nil {
		model.Delete()
		return nil, ErrInterpreter
	}
	if status := interp.AllocateTensors(); status != tflite.OK {
		interp.Delete()
		model.Delete()
		return nil, fmt.Errorf("inference: allocate tensors: %v", status)
	}

	input := interp.GetInputTensor(0)
	log.Info().Str("model", modelPath).Str("input", input.Name()).Ints("shape", tensorShape(input)).
		Int("outputs", interp.GetOutputTensorCount()).Msg("Model loaded")
	return &Runner{model: model, interp: interp}, nil
}

// Close releases the interpreter and the model.
func (r *Runner) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.interp.Delete()
	r.model.Delete()
}

// InputSize returns the width and height the model expects.
func (r *Runner) InputSize() (int, int) {
	input := r.interp.GetInputTensor(0)
	return input.Dim(2), input.Dim(1)
}

// Run feeds img to the model and returns every output tensor as floats,
// together with its shape.
func (r *Runner) Run(img gocv.Mat) ([][]float32, [][]int, error) {
	if img.Empty() {
		return nil, nil, ErrEmptyImage
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	input := r.interp.GetInputTensor(0)
	if err := fillInput(input, img); err != nil {
		return nil, nil, err
	}
	if status := r.interp.Invoke(); status != tflite.OK {
		return nil, nil, fmt.Errorf("inference: invoke: %v", status)
	}

	count := r.interp.GetOutputTensorCount()
	outputs := make([][]float32, count)
	shapes := make([][]int, count)
	for idx := 0; idx < count; idx++ {
		output := r.interp.GetOutputTensor(idx)
		shapes[idx] = tensorShape(output)
		outputs[idx] = readOutput(output)
		log.Debug().Str("output", output.Name()).Ints("shape", shapes[idx]).Msg("Output tensor")
	}
	return outputs, shapes, nil
}

func tensorShape(t *tflite.Tensor) []int {
	shape := make([]int, t.NumDims())
	for idx := range shape {
		shape[idx] = t.Dim(idx)
	}
	return shape
}

// fillInput resizes img to the input tensor size and copies it in.
func fillInput(input *tflite.Tensor, img gocv.Mat) error {
	size := image.Pt(input.Dim(2), input.Dim(1))
	resized := gocv.NewMat()
	defer resized.Close()

	switch input.Type() {
	case tflite.UInt8:
		gocv.Resize(img, &resized, size, 0, 0, gocv.InterpolationDefault)
		v, err := resized.DataPtrUint8()
		if err != nil {
			return fmt.Errorf("inference: input data: %w", err)
		}
		if status := input.SetUint8s(v); status != tflite.OK {
			return fmt.Errorf("inference: copy input: %v", status)
		}
	case tflite.Float32:
		img.ConvertTo(&resized, gocv.MatTypeCV32F)
		gocv.Resize(resized, &resized, size, 0, 0, gocv.InterpolationDefault)
		v, err := resized.DataPtrFloat32()
		if err != nil {
			return fmt.Errorf("inference: input data: %w", err)
		}
		for i := range v {
			v[i] = (v[i] - 127.5) / 127.5
		}
		if status := input.SetFloat32s(v); status != tflite.OK {
			return fmt.Errorf("inference: copy input: %v", status)
		}
	default:
		return fmt.Errorf("inference: unsupported input type %v", input.Type())
	}
	return nil
}

// readOutput copies an output tensor, dequantizing uint8 values.
func readOutput(output *tflite.Tensor) []float32 {
	switch output.Type() {
	case tflite.UInt8:
		q := output.QuantizationParams()
		f := output.UInt8s()
		out := make([]float32, len(f))
		for i, v := range f {
			out[i] = float32(q.Scale * float64(int(v)-q.ZeroPoint))
		}
		return out
	case tflite.Float32:
		f := output.Float32s()
		out := make([]float32, len(f))
		copy(out, f)
		return out
	}
	log.Warn().Str("output", output.Name()).Msg("Unsupported output type")
	return nil
}

// LoadLabels reads one class name per line.
func LoadLabels(filename string) ([]string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	labels := []string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		labels = append(labels, scanner.Text())
	}
	return labels, scanner.Err()
}

// Label returns the name of class, or "unknown".
func Label(labels []string, class int) string {
	if class >= 0 && class < len(labels) {
		return labels[class]
	}
	return "unknown"
}
