package bntx

import "bfres-decoder/internal/binfile"

var headerLayout = binfile.Layout{
	binfile.Magic("BNTX"),
	binfile.Pad(4),
	binfile.U16("versionMajor"),
	binfile.U16("versionMinor"),
	binfile.U16("bom"),
	binfile.U8("alignment"),
	binfile.U8("addrSize"),
	binfile.U32("nameOffset"),
	binfile.U16("flags"),
	binfile.U16("blockOffset"),
	binfile.U32("relocOffset"),
	binfile.U32("fileSize"),
}

const nxOffset = 0x20

var nxLayout = binfile.Layout{
	binfile.Magic("NX  "),
	binfile.U32("count"),
	binfile.Ptr("textureTable"),
	binfile.Ptr("dataBlock"),
	binfile.Ptr("textureDict"),
	binfile.U32("memPoolOffset"),
}

var brtiLayout = binfile.Layout{
	binfile.Magic("BRTI"),
	binfile.U32("length"),
	binfile.U64("length2"),
	binfile.U8("flags"),
	binfile.U8("dimensions"),
	binfile.U16("tileMode"),
	binfile.U16("swizzleSize"),
	binfile.U16("mipCount"),
	binfile.U16("multisampleCount"),
	binfile.U16("reserved1A"),
	binfile.U16("format"),
	binfile.Pad(2),
	binfile.U32("accessFlags"),
	binfile.I32("width"),
	binfile.I32("height"),
	binfile.I32("depth"),
	binfile.U32("arrayCount"),
	binfile.U32("textureLayout"),
	binfile.U32("textureLayout2"),
	binfile.Pad(20),
	binfile.U32("dataLen"),
	binfile.U32("alignment"),
	binfile.U8s("channelTypes", 4),
	binfile.I32("textureType"),
	binfile.Str("name"),
	binfile.Ptr("parent"),
	binfile.Ptr("mipPointers"),
}
