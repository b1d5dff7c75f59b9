package flow

import "strings"

// ParamPrefix marks keys of the flat property-form format that belong to the
// nested parameter bag.
const ParamPrefix = "elyra_"

// Keys of the nested parameter bags in app_data.
const (
	ComponentParametersKey = "component_parameters"
	GlobalsKey             = "globals"
	PropertiesKey          = "properties"
	PipelineDefaultsKey    = "pipeline_defaults"
)

// NestedToPrefixed flattens an app_data bag into the property-form format.
// System keys are copied as-is and the entries of component_parameters (or
// globals when there are none) are added under ParamPrefix.
func NestedToPrefixed(appData map[string]any) map[string]any {
	out := make(map[string]any, len(appData))
	for k, v := range appData {
		if k == ComponentParametersKey || k == GlobalsKey {
			continue
		}
		out[k] = v
	}
	nested, _ := appData[ComponentParametersKey].(map[string]any)
	if nested == nil {
		nested, _ = appData[GlobalsKey].(map[string]any)
	}
	for k, v := range nested {
		out[ParamPrefix+k] = v
	}
	return out
}

// PrefixedToNested is the inverse of NestedToPrefixed. Prefixed keys are
// moved into component_parameters, or into globals when global is set.
func PrefixedToNested(params map[string]any, global bool) map[string]any {
	bagKey := ComponentParametersKey
	if global {
		bagKey = GlobalsKey
	}
	bag := map[string]any{}
	out := map[string]any{bagKey: bag}
	for k, v := range params {
		if stripped, ok := strings.CutPrefix(k, ParamPrefix); ok {
			bag[stripped] = v
			continue
		}
		out[k] = v
	}
	return out
}

// ComponentParameters returns the node's app_data.component_parameters bag,
// or nil when there is none.
func (n *Node) ComponentParameters() map[string]any {
	params, _ := n.AppData[ComponentParametersKey].(map[string]any)
	return params
}

// SetComponentParameter stores a value in app_data.component_parameters,
// creating the bags as needed.
func (n *Node) SetComponentParameter(key string, value any) {
	if n.AppData == nil {
		n.AppData = map[string]any{}
	}
	params := n.ComponentParameters()
	if params == nil {
		params = map[string]any{}
		n.AppData[ComponentParametersKey] = params
	}
	params[key] = value
}

// Properties returns the pipeline's app_data.properties bag, or nil.
func (p *Pipeline) Properties() map[string]any {
	props, _ := p.AppData[PropertiesKey].(map[string]any)
	return props
}

// Defaults returns app_data.properties.pipeline_defaults, or nil.
func (p *Pipeline) Defaults() map[string]any {
	defaults, _ := p.Properties()[PipelineDefaultsKey].(map[string]any)
	return defaults
}

// SetProperty stores a pipeline-level property, creating the bags as needed.
func (p *Pipeline) SetProperty(key string, value any) {
	if p.AppData == nil {
		p.AppData = map[string]any{}
	}
	props := p.Properties()
	if props == nil {
		props = map[string]any{}
		p.AppData[PropertiesKey] = props
	}
	props[key] = value
}
