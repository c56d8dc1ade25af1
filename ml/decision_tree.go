package ml

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/decision_tree.json
var treeSchemaJSON string

var treeSchema = jsonschema.MustCompileString("decision_tree.json", treeSchemaJSON)

// DecisionTree is a classifier stored as a flat node array. Node 0 is the
// root; internal nodes send a row left when its feature is <= Threshold.
type DecisionTree struct {
	nodes   []TreeNode
	classes []Label
}

type TreeNode struct {
	FeatureIdx int     `json:"feature_idx"`
	Threshold  float64 `json:"threshold"`
	LeftChild  int     `json:"left_child"`
	RightChild int     `json:"right_child"`
	ClassLabel int     `json:"class_label"`
	IsLeaf     bool    `json:"is_leaf"`
}

type treeDocument struct {
	Classes []any      `json:"classes,omitempty"`
	Nodes   []TreeNode `json:"nodes"`
}

// NewDecisionTree builds a tree from nodes. When classes is empty a leaf's
// class index is printed as its label.
func NewDecisionTree(nodes []TreeNode, classes []Label) *DecisionTree {
	return &DecisionTree{
		nodes:   append([]TreeNode(nil), nodes...),
		classes: append([]Label(nil), classes...),
	}
}

func (dt *DecisionTree) Predict(ctx context.Context, rows []FeatureVector) ([]Label, error) {
	labels := make([]Label, 0, len(rows))
	for i, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		class, err := dt.classify(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		label, err := dt.label(class)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		labels = append(labels, label)
	}
	return labels, nil
}

func (dt *DecisionTree) classify(features FeatureVector) (int, error) {
	if len(dt.nodes) == 0 {
		return 0, errors.New("model not trained")
	}
	idx := 0
	for steps := 0; steps <= len(dt.nodes); steps++ {
		node := dt.nodes[idx]
		if node.IsLeaf {
			return node.ClassLabel, nil
		}
		if node.FeatureIdx < 0 || node.FeatureIdx >= FeatureCount {
			return 0, errors.New("feature index out of range")
		}
		if features[node.FeatureIdx] <= node.Threshold {
			idx = node.LeftChild
		} else {
			idx = node.RightChild
		}
		if idx < 0 || idx >= len(dt.nodes) {
			return 0, errors.New("invalid tree state")
		}
	}
	return 0, errors.New("tree contains a cycle")
}

func (dt *DecisionTree) label(class int) (Label, error) {
	if len(dt.classes) == 0 {
		return Label(strconv.Itoa(class)), nil
	}
	if class < 0 || class >= len(dt.classes) {
		return "", fmt.Errorf("class label %d out of range", class)
	}
	return dt.classes[class], nil
}

// Describe summarizes the tree for operators.
func (dt *DecisionTree) Describe() string {
	if len(dt.classes) == 0 {
		return fmt.Sprintf("decision tree, %d nodes", len(dt.nodes))
	}
	return fmt.Sprintf("decision tree, %d nodes, classes %v", len(dt.nodes), dt.classes)
}

func (dt *DecisionTree) Save(path string) error {
	if len(dt.nodes) == 0 {
		return errors.New("model not trained")
	}
	doc := treeDocument{Nodes: dt.nodes}
	for _, class := range dt.classes {
		doc.Classes = append(doc.Classes, string(class))
	}
	payload, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o600)
}

func (dt *DecisionTree) Load(path string) error {
	payload, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return dt.decode(payload)
}

// decode accepts either {"classes": [...], "nodes": [...]} or a bare node
// array. The payload is checked against the embedded schema first.
func (dt *DecisionTree) decode(payload []byte) error {
	var raw any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return fmt.Errorf("decode decision tree: %w", err)
	}
	if err := treeSchema.Validate(raw); err != nil {
		return fmt.Errorf("invalid decision tree: %w", err)
	}

	var doc treeDocument
	if bytes.HasPrefix(bytes.TrimSpace(payload), []byte("[")) {
		if err := json.Unmarshal(payload, &doc.Nodes); err != nil {
			return fmt.Errorf("decode decision tree: %w", err)
		}
	} else if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("decode decision tree: %w", err)
	}

	classes := make([]Label, len(doc.Classes))
	for i, class := range doc.Classes {
		classes[i] = Label(fmt.Sprint(class))
	}
	dt.nodes = doc.Nodes
	dt.classes = classes
	return nil
}
