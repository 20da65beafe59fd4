package fres

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/binfile"
	"bfres-decoder/internal/dict"
	"bfres-decoder/internal/logging"
)

// RenderInfo is a named list of renderer hints.
type RenderInfo struct {
	Name  string
	Value Value
}

// Param is one material shader parameter.
type Param struct {
	Name   string
	Type   ParamType
	Offset int
	Value  Value
}

// ShaderOption is a static shader switch. V10 files store the boolean
// options as bits; everything else is a string.
type ShaderOption struct {
	Name  string
	Value Value
}

// SamplerInfo is the GPU sampler state of one sampler.
type SamplerInfo struct {
	WrapU, WrapV, WrapW uint8
	Compare             uint8
	Border              uint8
	MaxAnisotropy       uint8
	Filter              uint16
	LODMin, LODMax      float32
	LODBias             float32
}

// Sampler binds a shader sampler name to a texture name.
type Sampler struct {
	Name        string
	Texture     string
	TextureSlot int64
	Slot        int64
	Info        SamplerInfo
}

// TextureAttribute maps a fragment shader attribute to a sampler.
type TextureAttribute struct {
	Name    string
	Sampler string
}

// Material is an FMAT.
type Material struct {
	Name              string
	Index             int
	Flags             uint32
	ShaderArchive     string
	ShaderModel       string
	RenderInfo        []*RenderInfo
	Params            []*Param
	ShaderOptions     []*ShaderOption
	Samplers          []*Sampler
	TextureAttributes []TextureAttribute
	VertexAttributes  []string
}

// Param returns the parameter with the given name.
func (m *Material) Param(name string) (*Param, bool) {
	for _, p := range m.Params {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Sampler returns the sampler with the given name.
func (m *Material) Sampler(name string) (*Sampler, bool) {
	for _, s := range m.Samplers {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

// RenderInfoValue returns the render info entry with the given name.
func (m *Material) RenderInfoValue(name string) (Value, bool) {
	for _, ri := range m.RenderInfo {
		if ri.Name == name {
			return ri.Value, true
		}
	}
	return Value{}, false
}

// ShaderOption returns the option with the given name.
func (m *Material) ShaderOption(name string) (Value, bool) {
	for _, o := range m.ShaderOptions {
		if o.Name == name {
			return o.Value, true
		}
	}
	return Value{}, false
}

// shaderTables gathers the parts of a material that live in the header
// for V0 and in the shader reflection for V10.
type shaderTables struct {
	assign          binfile.Record
	archive, model  string
	renderInfo      int64
	renderInfoCount int
	params          int64
	paramCount      int
	texAttrs        *dict.Dict
	options         *dict.Dict
}

func (d *decoder) material(off int64, index int) (*Material, error) {
	hdr, err := d.r.ReadStruct(off, fmatLayouts[d.ver])
	if err != nil {
		return nil, err
	}
	m := &Material{
		Name:  hdr.Str("name"),
		Index: index,
		Flags: uint32(hdr.Uint("flags")),
	}
	st, err := d.shaderTables(hdr)
	if err != nil {
		return nil, fmt.Errorf("%q shader assign: %w", m.Name, err)
	}
	m.ShaderArchive, m.ShaderModel = st.archive, st.model

	steps := []struct {
		what string
		fn   func(*Material, binfile.Record, *shaderTables) error
	}{
		{"vertex attributes", d.vertexAttributes},
		{"shader options", d.shaderOptions},
		{"render info", d.renderInfo},
		{"params", d.params},
		{"samplers", d.samplers},
		{"texture attributes", d.textureAttributes},
	}
	for _, s := range steps {
		if err := s.fn(m, hdr, st); err != nil {
			return nil, fmt.Errorf("%q %s: %w", m.Name, s.what, err)
		}
	}
	return m, nil
}

func (d *decoder) shaderTables(hdr binfile.Record) (*shaderTables, error) {
	st := &shaderTables{texAttrs: &dict.Dict{}, options: &dict.Dict{}}
	if d.ver == V0 {
		st.setArrays(hdr)
	}
	off := hdr.Offset("shaderAssign")
	if off == 0 {
		return st, nil
	}
	var err error
	if st.assign, err = d.r.ReadStruct(off, shaderAssignLayouts[d.ver]); err != nil {
		return nil, err
	}

	texDict, optDict := st.assign.Offset("texAttrDict"), st.assign.Offset("optionDict")
	if d.ver == V10 {
		refl, err := d.r.ReadStruct(st.assign.Offset("reflection"), reflectionLayout)
		if err != nil {
			return nil, fmt.Errorf("reflection: %w", err)
		}
		st.setArrays(refl)
		st.archive, st.model = refl.Str("archive"), refl.Str("model")
		texDict, optDict = refl.Offset("texAttrDict"), refl.Offset("optionDict")
	} else {
		st.archive, st.model = st.assign.Str("archive"), st.assign.Str("model")
	}

	if st.texAttrs, err = dict.Read(d.r, texDict); err != nil {
		return nil, fmt.Errorf("texture attribute dict: %w", err)
	}
	if st.options, err = dict.Read(d.r, optDict); err != nil {
		return nil, fmt.Errorf("shader option dict: %w", err)
	}
	return st, nil
}

func (st *shaderTables) setArrays(src binfile.Record) {
	st.renderInfo = src.Offset("renderInfo")
	st.renderInfoCount = int(src.Uint("renderInfoCount"))
	st.params = src.Offset("paramArray")
	st.paramCount = int(src.Uint("paramCount"))
}

func (d *decoder) vertexAttributes(m *Material, _ binfile.Record, st *shaderTables) error {
	if st.assign == nil {
		return nil
	}
	base := st.assign.Offset("vtxAttrNames")
	for i := range int(st.assign.Uint("vtxAttrCount")) {
		name, err := d.r.StringAt(base + int64(i)*8)
		if err != nil {
			return fmt.Errorf("%d: %w", i, err)
		}
		m.VertexAttributes = append(m.VertexAttributes, name)
	}
	return nil
}

// setOption stores an option, replacing and warning about duplicates.
// Empty names are skipped.
func (m *Material) setOption(name string, v Value) {
	if name == "" {
		return
	}
	for _, o := range m.ShaderOptions {
		if o.Name == name {
			logging.Warn("duplicate shader option", "material", m.Name, "option", name)
			o.Value = v
			return
		}
	}
	m.ShaderOptions = append(m.ShaderOptions, &ShaderOption{Name: name, Value: v})
}

func (d *decoder) shaderOptions(m *Material, _ binfile.Record, st *shaderTables) error {
	if st.assign == nil {
		return nil
	}
	total := int(st.assign.Uint("optionCount"))
	bools := 0
	if d.ver == V10 {
		bools = int(st.assign.Uint("boolOptionCount"))
		base := st.assign.Offset("boolOptionValues")
		for i := range bools {
			word, err := d.r.U32(base + int64(i/32)*4)
			if err != nil {
				return fmt.Errorf("bool option %d: %w", i, err)
			}
			name, _ := st.options.NameAt(i + 1)
			m.setOption(name, Value{Kind: ValueBool, Bools: []bool{word>>(i%32)&1 != 0}})
		}
		// V10 counts include the boolean options.
		total -= bools
	}
	base := st.assign.Offset("optionValues")
	for i := range max(total, 0) {
		s, err := d.r.StringAt(base + int64(i)*8)
		if err != nil {
			return fmt.Errorf("option %d: %w", i, err)
		}
		name, _ := st.options.NameAt(bools + i + 1)
		m.setOption(name, Value{Kind: ValueString, Tag: RenderInfoString, Strings: []string{s}})
	}
	return nil
}

func (m *Material) setRenderInfo(name string, v Value) {
	if v.Kind == ValueUnknown {
		logging.Warn("unknown render info type", "material", m.Name, "name", name, "type", v.Tag)
	}
	for _, ri := range m.RenderInfo {
		if ri.Name == name {
			logging.Warn("duplicate render info", "material", m.Name, "name", name)
			ri.Value = v
			return
		}
	}
	m.RenderInfo = append(m.RenderInfo, &RenderInfo{Name: name, Value: v})
}

func (d *decoder) renderInfo(m *Material, hdr binfile.Record, st *shaderTables) error {
	layout := renderInfoLayouts[d.ver]
	for i := range st.renderInfoCount {
		rec, err := d.r.ReadStruct(st.renderInfo+int64(i)*layout.Size(), layout)
		if err != nil {
			return fmt.Errorf("%d: %w", i, err)
		}
		name, typ := rec.Str("name"), uint8(rec.Uint("type"))

		var at int64
		var count int
		if d.ver == V10 {
			n, err := d.r.U16(hdr.Offset("renderInfoCounts") + int64(i)*2)
			if err != nil {
				return fmt.Errorf("%q count: %w", name, err)
			}
			rel, err := d.r.U16(hdr.Offset("renderInfoOffsets") + int64(i)*2)
			if err != nil {
				return fmt.Errorf("%q offset: %w", name, err)
			}
			at, count = hdr.Offset("renderInfoValues")+int64(rel), int(n)
		} else {
			at, count = rec.Offset("values"), int(rec.Uint("count"))
		}

		v, err := readRenderInfoValues(d.r, at, typ, count)
		if err != nil {
			return fmt.Errorf("%q values: %w", name, err)
		}
		m.setRenderInfo(name, v)
	}
	return nil
}

func (d *decoder) params(m *Material, hdr binfile.Record, st *shaderTables) error {
	layout := paramLayouts[d.ver]
	data := hdr.Offset("paramData")
	for i := range st.paramCount {
		rec, err := d.r.ReadStruct(st.params+int64(i)*layout.Size(), layout)
		if err != nil {
			return fmt.Errorf("%d: %w", i, err)
		}
		p := &Param{
			Name:   rec.Str("name"),
			Type:   ParamType(rec.Uint("type")),
			Offset: int(rec.Uint("offset")),
		}
		if p.Value, err = readParamValue(d.r, data+int64(p.Offset), p.Type, int(rec.Uint("size"))); err != nil {
			return fmt.Errorf("%q value: %w", p.Name, err)
		}
		if p.Value.Kind == ValueUnknown {
			logging.Warn("unknown material param type", "material", m.Name, "param", p.Name, "type", p.Type)
		}
		if prev, ok := m.Param(p.Name); ok {
			logging.Warn("duplicate material param", "material", m.Name, "param", p.Name)
			*prev = *p
			continue
		}
		m.Params = append(m.Params, p)
	}
	return nil
}

func (d *decoder) samplers(m *Material, hdr binfile.Record, _ *shaderTables) error {
	names, err := dict.Read(d.r, hdr.Offset("samplerDict"))
	if err != nil {
		return fmt.Errorf("dict: %w", err)
	}
	texCount, smpCount := int(hdr.Uint("texRefCount")), int(hdr.Uint("samplerCount"))
	if texCount != smpCount || smpCount != names.Count() {
		return fmt.Errorf("%d textures, %d samplers, %d sampler names: %w",
			texCount, smpCount, names.Count(), ErrInconsistentSamplerTable)
	}

	slot := func(base int64, i int) (int64, error) {
		if base == 0 {
			return -1, nil
		}
		return d.r.I64(base + int64(i)*8)
	}
	for i := range smpCount {
		s := &Sampler{}
		s.Name, _ = names.NameAt(i + 1)
		if s.Texture, err = d.r.StringAt(hdr.Offset("texRefArray") + int64(i)*8); err != nil {
			return fmt.Errorf("texture %d name: %w", i, err)
		}
		if s.TextureSlot, err = slot(hdr.Offset("texSlots"), i); err != nil {
			return fmt.Errorf("texture %d slot: %w", i, err)
		}
		if s.Slot, err = slot(hdr.Offset("samplerSlots"), i); err != nil {
			return fmt.Errorf("sampler %d slot: %w", i, err)
		}
		info, err := d.r.ReadStruct(hdr.Offset("samplerInfo")+int64(i)*samplerInfoLayout.Size(), samplerInfoLayout)
		if err != nil {
			return fmt.Errorf("sampler %d info: %w", i, err)
		}
		s.Info = SamplerInfo{
			WrapU:         uint8(info.Uint("wrapU")),
			WrapV:         uint8(info.Uint("wrapV")),
			WrapW:         uint8(info.Uint("wrapW")),
			Compare:       uint8(info.Uint("compare")),
			Border:        uint8(info.Uint("border")),
			MaxAnisotropy: uint8(info.Uint("maxAniso")),
			Filter:        uint16(info.Uint("filter")),
			LODMin:        info.Float("lodMin"),
			LODMax:        info.Float("lodMax"),
			LODBias:       info.Float("lodBias"),
		}
		m.Samplers = append(m.Samplers, s)
	}
	return nil
}

func (d *decoder) textureAttributes(m *Material, _ binfile.Record, st *shaderTables) error {
	if st.assign == nil {
		return nil
	}
	names := st.assign.Offset("texAttrNames")
	indices := int64(0)
	if d.ver == V10 {
		indices = st.assign.Offset("texAttrIndices")
	}
	for i := range int(st.assign.Uint("texAttrCount")) {
		sampler, err := d.r.StringAt(names + int64(i)*8)
		if err != nil {
			return fmt.Errorf("%d sampler name: %w", i, err)
		}
		node := i
		if indices != 0 {
			idx, err := d.r.U8(indices + int64(i))
			if err != nil {
				return fmt.Errorf("%d index: %w", i, err)
			}
			node = int(idx)
		}
		name, err := st.texAttrs.NameAt(node + 1)
		if err != nil {
			return fmt.Errorf("%d: %w", i, err)
		}
		if _, ok := m.Sampler(sampler); !ok {
			return fmt.Errorf("attribute %q names sampler %q: %w", name, sampler, ErrInconsistentSamplerTable)
		}
		m.TextureAttributes = append(m.TextureAttributes, TextureAttribute{Name: name, Sampler: sampler})
	}
	return nil
}

// Dump renders the material tables.
func (m *Material) Dump() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Material %d %q: shader %q/%q flags 0x%08X\n",
		m.Index, m.Name, m.ShaderArchive, m.ShaderModel, m.Flags)
	b.WriteString("  Render info:\n")
	for _, ri := range m.RenderInfo {
		fmt.Fprintf(&b, "    %-32s %-8s %s\n", ri.Name, ri.Value.Kind, ri.Value)
	}
	b.WriteString("  Params:\n")
	for _, p := range m.Params {
		fmt.Fprintf(&b, "    %-40s %-9s @0x%04X %s\n", p.Name, p.Type, p.Offset, p.Value)
	}
	b.WriteString("  Samplers:\n")
	for i, s := range m.Samplers {
		fmt.Fprintf(&b, "    %3d %-12s slot %3d texture %q (slot %d) wrap %d/%d/%d filter 0x%04X\n",
			i, s.Name, s.Slot, s.Texture, s.TextureSlot, s.Info.WrapU, s.Info.WrapV, s.Info.WrapW, s.Info.Filter)
	}
	b.WriteString("  Shader options:\n")
	for _, o := range m.ShaderOptions {
		fmt.Fprintf(&b, "    %-45s %s\n", o.Name, o.Value)
	}
	attrs := make([]string, len(m.TextureAttributes))
	for i, a := range m.TextureAttributes {
		attrs[i] = a.Name + "=" + a.Sampler
	}
	fmt.Fprintf(&b, "  Texture attributes: %s\n", strings.Join(attrs, ", "))
	fmt.Fprintf(&b, "  Vertex attributes: %s\n", strings.Join(m.VertexAttributes, ", "))
	return b.String()
}
