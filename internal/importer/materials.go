package importer

import (
	"fmt"
	"strings"

	"bfres-decoder/internal/fres"
)

// Role is what a material uses a texture for, judged by the texture
// name's suffix.
type Role string

const (
	RoleUnknown  Role = ""
	RoleAlbedo   Role = "albedo"
	RoleNormal   Role = "normal"
	RoleSpecular Role = "specular"
	RoleAO       Role = "ao"
	RoleEmission Role = "emission"
)

var roleSuffixes = []struct {
	suffix string
	role   Role
}{
	{"_Alb", RoleAlbedo},
	{"_Nrm", RoleNormal},
	{"_Spm", RoleSpecular},
	{"_AO", RoleAO},
	{"_Emm", RoleEmission},
}

// TextureRole classifies a texture name. A trailing ".N" variant index
// is ignored: "Body_Alb.1" is an albedo map.
func TextureRole(texName string) Role {
	name, _, _ := strings.Cut(texName, ".")
	for _, rs := range roleSuffixes {
		if strings.HasSuffix(name, rs.suffix) {
			return rs.role
		}
	}
	return RoleUnknown
}

// Binding links one material sampler to the texture it samples.
type Binding struct {
	Model    string
	Material string
	Sampler  string
	// Attribute is the texture attribute naming this sampler, if any.
	Attribute string
	Texture   string
	Role      Role
	// Found reports whether the texture was in a decoded container.
	Found bool
	// Decoded reports whether its pixels decoded.
	Decoded bool
}

func (b Binding) String() string {
	state := "missing"
	switch {
	case b.Decoded:
		state = "ok"
	case b.Found:
		state = "undecodable"
	}
	role := string(b.Role)
	if role == "" {
		role = "?"
	}
	return fmt.Sprintf("%s/%s %s → %q (%s, %s)", b.Model, b.Material, b.Sampler, b.Texture, role, state)
}

func (im *Importer) bindMaterial(model string, mat *fres.Material) []Binding {
	attrs := make(map[string]string, len(mat.TextureAttributes))
	for _, a := range mat.TextureAttributes {
		attrs[a.Sampler] = a.Name
	}

	out := make([]Binding, 0, len(mat.Samplers))
	for _, s := range mat.Samplers {
		b := Binding{
			Model:     model,
			Material:  mat.Name,
			Sampler:   s.Name,
			Attribute: attrs[s.Name],
			Texture:   s.Texture,
			Role:      TextureRole(s.Texture),
		}
		if _, ok := im.index.Lookup(s.Texture); ok {
			b.Found = true
			img, _ := im.cache.ResolveErr(s.Texture)
			b.Decoded = img != nil
		}
		if b.Role == RoleUnknown {
			im.log.Warn("don't know what to do with texture", "material", mat.Name, "texture", s.Texture)
		}
		if !b.Found {
			im.log.Warn("texture not found", "material", mat.Name, "texture", s.Texture)
		}
		out = append(out, b)
	}
	return out
}
