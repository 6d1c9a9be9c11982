package inference

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/goccy/go-json"
)

// ErrInputDimension 表示输入向量长度与模型输入维度不一致。
var ErrInputDimension = errors.New("input vector length does not match model input dimension")

// ScoringModel 是预训练分类模型的最小抽象：输入编码向量，输出每个类别的分数。
// 实现必须是纯函数，可以被并发调用。
type ScoringModel interface {
	Name() string
	InputDim() int
	OutputDim() int
	Score(vector []float64) ([]float64, error)
}

// modelArtifact 是从 Keras 导出的权重文件格式。
type modelArtifact struct {
	Name     string          `json:"name"`
	InputDim int             `json:"input_dim"`
	Layers   []layerArtifact `json:"layers"`
}

type layerArtifact struct {
	Units      int         `json:"units"`
	Activation string      `json:"activation"`
	Weights    [][]float64 `json:"weights"` // [input][units]，与 Keras Dense kernel 一致
	Bias       []float64   `json:"bias"`
}

type denseLayer struct {
	weights    [][]float64
	bias       []float64
	activation string
}

// DenseModel 是由若干全连接层组成的前馈网络，加载后只读。
type DenseModel struct {
	name     string
	inputDim int
	layers   []denseLayer
}

var supportedActivations = map[string]struct{}{
	"linear":  {},
	"relu":    {},
	"sigmoid": {},
	"tanh":    {},
	"softmax": {},
}

// LoadDenseModel 解析并校验模型权重。任何形状或数值问题都返回错误。
func LoadDenseModel(data []byte) (*DenseModel, error) {
	var art modelArtifact
	if err := json.Unmarshal(data, &art); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if art.InputDim <= 0 {
		return nil, fmt.Errorf("model input_dim must be positive, got %d", art.InputDim)
	}
	if len(art.Layers) == 0 {
		return nil, errors.New("model artifact has no layers")
	}

	m := &DenseModel{name: art.Name, inputDim: art.InputDim}
	if m.name == "" {
		m.name = "dense"
	}
	prev := art.InputDim
	for li, l := range art.Layers {
		act := strings.ToLower(strings.TrimSpace(l.Activation))
		if act == "" {
			act = "linear"
		}
		if _, ok := supportedActivations[act]; !ok {
			return nil, fmt.Errorf("layer %d: unsupported activation %q", li, l.Activation)
		}
		if l.Units <= 0 {
			return nil, fmt.Errorf("layer %d: units must be positive, got %d", li, l.Units)
		}
		if len(l.Weights) != prev {
			return nil, fmt.Errorf("layer %d: expected %d weight rows, got %d", li, prev, len(l.Weights))
		}
		for ri, row := range l.Weights {
			if len(row) != l.Units {
				return nil, fmt.Errorf("layer %d: weight row %d has %d columns, want %d", li, ri, len(row), l.Units)
			}
			if err := checkFinite(row); err != nil {
				return nil, fmt.Errorf("layer %d: weight row %d: %w", li, ri, err)
			}
		}
		if len(l.Bias) != l.Units {
			return nil, fmt.Errorf("layer %d: expected %d bias values, got %d", li, l.Units, len(l.Bias))
		}
		if err := checkFinite(l.Bias); err != nil {
			return nil, fmt.Errorf("layer %d: bias: %w", li, err)
		}
		m.layers = append(m.layers, denseLayer{weights: l.Weights, bias: l.Bias, activation: act})
		prev = l.Units
	}
	return m, nil
}

// Name 返回模型名称。
func (m *DenseModel) Name() string { return m.name }

// InputDim 返回模型输入维度。
func (m *DenseModel) InputDim() int { return m.inputDim }

// OutputDim 返回最后一层的单元数。
func (m *DenseModel) OutputDim() int { return len(m.layers[len(m.layers)-1].bias) }

// Score 执行一次前向传播。前置条件：len(vector) == InputDim()。
func (m *DenseModel) Score(vector []float64) ([]float64, error) {
	if len(vector) != m.inputDim {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInputDimension, len(vector), m.inputDim)
	}
	x := vector
	for _, l := range m.layers {
		y := make([]float64, len(l.bias))
		copy(y, l.bias)
		for i, xi := range x {
			if xi == 0 {
				continue
			}
			row := l.weights[i]
			for j := range y {
				y[j] += xi * row[j]
			}
		}
		activate(l.activation, y)
		x = y
	}
	return x, nil
}

func activate(name string, v []float64) {
	switch name {
	case "relu":
		for i, x := range v {
			if x < 0 {
				v[i] = 0
			}
		}
	case "sigmoid":
		for i, x := range v {
			v[i] = 1 / (1 + math.Exp(-x))
		}
	case "tanh":
		for i, x := range v {
			v[i] = math.Tanh(x)
		}
	case "softmax":
		maxV := math.Inf(-1)
		for _, x := range v {
			if x > maxV {
				maxV = x
			}
		}
		var sum float64
		for i, x := range v {
			v[i] = math.Exp(x - maxV)
			sum += v[i]
		}
		for i := range v {
			v[i] /= sum
		}
	}
}

func checkFinite(values []float64) error {
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("value at %d is not finite", i)
		}
	}
	return nil
}

// ArgMax 返回最大分数的下标，并列时取第一个；空切片返回 -1。
func ArgMax(scores []float64) int {
	best := -1
	for i, s := range scores {
		if best == -1 || s > scores[best] {
			best = i
		}
	}
	return best
}
