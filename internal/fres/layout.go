package fres

import (
	"bfres-decoder/internal/binfile"
)

// Version selects between the two on-disk layouts of bones and
// materials.
type Version uint8

const (
	V0 Version = iota
	V10
)

func (v Version) String() string {
	if v == V10 {
		return "v10"
	}
	return "v0"
}

// layoutVersion maps a header version pair to its layout variant.
func layoutVersion(major, minor uint16) Version {
	if major == 0 && minor >= 10 {
		return V10
	}
	return V0
}

var headerLayout = binfile.Layout{
	binfile.Magic("FRES"),
	binfile.Pad(4),
	binfile.U16("versionMajor"),
	binfile.U16("versionMinor"),
	binfile.U16("bom"),
	binfile.U8("alignment"),
	binfile.U8("addrSize"),
	binfile.U32("fileNameOffset"),
	binfile.U16("flags"),
	binfile.U16("blockOffset"),
	binfile.U32("relocTableOffset"),
	binfile.U32("fileSize"),
	binfile.Str("name"),
	binfile.Ptr("modelArray"),
	binfile.Ptr("modelDict"),
	binfile.Pad(0x50), // animation arrays and dictionaries
	binfile.Ptr("bufferMemPool"),
	binfile.Ptr("bufferSection"),
	binfile.Ptr("embedArray"),
	binfile.Ptr("embedDict"),
	binfile.Pad(8),
	binfile.Ptr("stringTable"),
	binfile.U32("stringTableSize"),
	binfile.U16("modelCount"),
	binfile.Pad(10), // animation counts
	binfile.U16("embedCount"),
	binfile.Pad(6),
}

var bufferSectionLayout = binfile.Layout{
	binfile.U32("unk"),
	binfile.U32("size"),
	binfile.Ptr("data"),
	binfile.Pad(16),
}

var embedLayout = binfile.Layout{
	binfile.Ptr("data"),
	binfile.U32("size"),
	binfile.Pad(4),
}

var fmdlLayout = binfile.Layout{
	binfile.Magic("FMDL"),
	binfile.U32("size"),
	binfile.U32("size2"),
	binfile.Pad(4),
	binfile.Str("name"),
	binfile.Ptr("strTabEnd"),
	binfile.Ptr("skeleton"),
	binfile.Ptr("vertexArray"),
	binfile.Ptr("shapeArray"),
	binfile.Ptr("shapeDict"),
	binfile.Ptr("materialArray"),
	binfile.Ptr("materialDict"),
	binfile.Ptr("userData"),
	binfile.Ptr("userDataDict"),
	binfile.Ptr("user"),
	binfile.U16("vertexCount"),
	binfile.U16("shapeCount"),
	binfile.U16("materialCount"),
	binfile.U16("userDataCount"),
	binfile.U32("totalVertices"),
	binfile.Pad(4),
}

var fsklLayout = binfile.Layout{
	binfile.Magic("FSKL"),
	binfile.U32("size"),
	binfile.U32("size2"),
	binfile.Pad(4),
	binfile.Ptr("boneDict"),
	binfile.Ptr("boneArray"),
	binfile.Ptr("matrixToBone"),
	binfile.Ptr("inverseModel"),
	binfile.Ptr("user"),
	binfile.U32("flags"),
	binfile.U16("boneCount"),
	binfile.U16("smoothCount"),
	binfile.U16("rigidCount"),
	binfile.Pad(6),
}

// Bone layouts differ in the size of the unknown block after the name.
var boneLayouts = [...]binfile.Layout{
	V0: {
		binfile.Str32("name"),
		binfile.U32s("unk", 5),
		binfile.U16("index"),
		binfile.I16("parent"),
		binfile.I16("smoothMtx"),
		binfile.I16("rigidMtx"),
		binfile.I16("billboard"),
		binfile.U16("userDataCount"),
		binfile.U32("flags"),
		binfile.F32s("scale", 3),
		binfile.F32s("rotation", 4),
		binfile.F32s("position", 3),
	},
	V10: {
		binfile.Str32("name"),
		binfile.Pad(4),
		binfile.U64s("unk", 3),
		binfile.U16("index"),
		binfile.I16("parent"),
		binfile.I16("smoothMtx"),
		binfile.I16("rigidMtx"),
		binfile.I16("billboard"),
		binfile.U16("userDataCount"),
		binfile.U32("flags"),
		binfile.F32s("scale", 3),
		binfile.F32s("rotation", 4),
		binfile.F32s("position", 3),
	},
}

var fvtxLayout = binfile.Layout{
	binfile.Magic("FVTX"),
	binfile.Pad(12),
	binfile.Ptr("attribArray"),
	binfile.Ptr("attribDict"),
	binfile.Ptr("memPool"),
	binfile.Ptr("runtimeBuffers"),
	binfile.Ptr("userBuffers"),
	binfile.Ptr("bufferInfoArray"),
	binfile.Ptr("strideArray"),
	binfile.Pad(8),
	binfile.U32("bufferOffset"),
	binfile.U8("attribCount"),
	binfile.U8("bufferCount"),
	binfile.U16("index"),
	binfile.U32("vertexCount"),
	binfile.U32("skinInfluence"),
}

var attribLayout = binfile.Layout{
	binfile.Str("name"),
	binfile.U32("format"),
	binfile.U16("offset"),
	binfile.U16("bufferIndex"),
}

const (
	bufferInfoSize = 0x10
	strideInfoSize = 0x10
)

var fshpLayout = binfile.Layout{
	binfile.Magic("FSHP"),
	binfile.U32("size"),
	binfile.U32("size2"),
	binfile.Pad(4),
	binfile.Str("name"),
	binfile.Ptr("vertexBuffer"),
	binfile.Ptr("lodArray"),
	binfile.Ptr("skinBoneIndexArray"),
	binfile.Ptr("keyShapes"),
	binfile.Ptr("keyShapeDict"),
	binfile.Ptr("bbox"),
	binfile.Ptr("radius"),
	binfile.Ptr("user"),
	binfile.U32("flags"),
	binfile.U16("index"),
	binfile.U16("materialIndex"),
	binfile.U16("boneIndex"),
	binfile.U16("vertexBufferIndex"),
	binfile.U16("skinBoneIndexCount"),
	binfile.U8("skinCount"),
	binfile.U8("lodCount"),
	binfile.U32("visGroupCount"),
	binfile.U16("bboxCount"),
	binfile.Pad(2),
}

var lodLayout = binfile.Layout{
	binfile.Ptr("subMeshArray"),
	binfile.Ptr("unk"),
	binfile.Ptr("memPool"),
	binfile.Ptr("indexBufferInfo"),
	binfile.U32("indexOffset"),
	binfile.U32("primitive"),
	binfile.U32("indexFormat"),
	binfile.U32("indexCount"),
	binfile.U16("visGroup"),
	binfile.U16("subMeshCount"),
	binfile.Pad(4),
}

var subMeshLayout = binfile.Layout{
	binfile.U32("offset"),
	binfile.U32("count"),
}

// Material headers. Field names are shared where the meaning is the
// same so decodeMaterial can read either record.
var fmatLayouts = [...]binfile.Layout{
	V0: {
		binfile.Magic("FMAT"),
		binfile.U32("size"),
		binfile.U32("size2"),
		binfile.Pad(4),
		binfile.Str("name"),
		binfile.Ptr("renderInfo"),
		binfile.Ptr("renderInfoDict"),
		binfile.Ptr("shaderAssign"),
		binfile.Ptr("unk30"),
		binfile.Ptr("texRefArray"),
		binfile.Ptr("unk40"),
		binfile.Ptr("samplerInfo"),
		binfile.Ptr("samplerDict"),
		binfile.Ptr("paramArray"),
		binfile.Ptr("paramDict"),
		binfile.Ptr("paramData"),
		binfile.Ptr("userData"),
		binfile.Ptr("userDataDict"),
		binfile.Ptr("volatileFlags"),
		binfile.Ptr("user"),
		binfile.Ptr("samplerSlots"),
		binfile.Ptr("texSlots"),
		binfile.U32("flags"),
		binfile.U16("index"),
		binfile.U16("renderInfoCount"),
		binfile.U8("texRefCount"),
		binfile.U8("samplerCount"),
		binfile.U16("paramCount"),
		binfile.U16("paramDataSize"),
		binfile.U16("rawParamDataSize"),
		binfile.U16("userDataCount"),
		binfile.U16("unkB2"),
		binfile.U32("unkB4"),
	},
	V10: {
		binfile.Magic("FMAT"),
		binfile.U32("flags"),
		binfile.Str("name"),
		binfile.Ptr("shaderAssign"),
		binfile.Ptr("textureViews"),
		binfile.Ptr("texRefArray"),
		binfile.Ptr("samplerArray"),
		binfile.Ptr("samplerInfo"),
		binfile.Ptr("samplerDict"),
		binfile.Ptr("renderInfoValues"),
		binfile.Ptr("renderInfoCounts"),
		binfile.Ptr("renderInfoOffsets"),
		binfile.Ptr("paramData"),
		binfile.Ptr("paramUBOOffsets"),
		binfile.Pad(8),
		binfile.Ptr("userData"),
		binfile.Ptr("userDataDict"),
		binfile.Ptr("volatileFlags"),
		binfile.Ptr("user"),
		binfile.Ptr("samplerSlots"),
		binfile.Ptr("texSlots"),
		binfile.U16("index"),
		binfile.U8("samplerCount"),
		binfile.U8("texRefCount"),
		binfile.Pad(2),
		binfile.U16("userDataCount"),
		binfile.U16("unkA8"),
		binfile.U16("unkAA"),
		binfile.U32("reserved"),
	},
}

var shaderAssignLayouts = [...]binfile.Layout{
	V0: {
		binfile.Str("archive"),
		binfile.Str("model"),
		binfile.Ptr("vtxAttrNames"),
		binfile.Ptr("vtxAttrDict"),
		binfile.Ptr("texAttrNames"),
		binfile.Ptr("texAttrDict"),
		binfile.Ptr("optionValues"),
		binfile.Ptr("optionDict"),
		binfile.Pad(4),
		binfile.U8("vtxAttrCount"),
		binfile.U8("texAttrCount"),
		binfile.U16("optionCount"),
	},
	V10: {
		binfile.Ptr("reflection"),
		binfile.Ptr("vtxAttrNames"),
		binfile.Ptr("vtxAttrIndices"),
		binfile.Ptr("texAttrNames"),
		binfile.Ptr("texAttrIndices"),
		binfile.Ptr("boolOptionValues"),
		binfile.Ptr("optionValues"),
		binfile.Ptr("optionIndices"),
		binfile.Pad(4),
		binfile.U8("vtxAttrCount"),
		binfile.U8("texAttrCount"),
		binfile.U16("boolOptionCount"),
		binfile.U16("optionCount"),
		binfile.Pad(6),
	},
}

var reflectionLayout = binfile.Layout{
	binfile.Str("archive"),
	binfile.Str("model"),
	binfile.Ptr("renderInfo"),
	binfile.Ptr("renderInfoDict"),
	binfile.Ptr("paramArray"),
	binfile.Ptr("paramDict"),
	binfile.Ptr("vtxAttrDict"),
	binfile.Ptr("texAttrDict"),
	binfile.Ptr("optionDict"),
	binfile.U16("renderInfoCount"),
	binfile.U16("paramCount"),
	binfile.U16("paramDataSize"),
	binfile.Pad(2),
}

var renderInfoLayouts = [...]binfile.Layout{
	V0: {
		binfile.Str("name"),
		binfile.Ptr("values"),
		binfile.U16("count"),
		binfile.U16("type"),
		binfile.U32("pad"),
	},
	V10: {
		binfile.Str("name"),
		binfile.U8("type"),
		binfile.Pad(7),
	},
}

var paramLayouts = [...]binfile.Layout{
	V0: {
		binfile.U64("unk0"),
		binfile.Str("name"),
		binfile.U8("type"),
		binfile.U8("size"),
		binfile.U16("offset"),
		binfile.I32("unk14"),
		binfile.U16("idx0"),
		binfile.U16("idx1"),
		binfile.Pad(4),
	},
	V10: {
		binfile.U64("unk0"),
		binfile.Str("name"),
		binfile.U16("offset"),
		binfile.U8("type"),
		binfile.Pad(5),
	},
}

var samplerInfoLayout = binfile.Layout{
	binfile.U8("wrapU"),
	binfile.U8("wrapV"),
	binfile.U8("wrapW"),
	binfile.U8("compare"),
	binfile.U8("border"),
	binfile.U8("maxAniso"),
	binfile.U16("filter"),
	binfile.F32("lodMin"),
	binfile.F32("lodMax"),
	binfile.F32("lodBias"),
	binfile.Pad(12),
}
