package register

// FeatureEnable switches the optional fragment pipeline stages on and off.
type FeatureEnable struct {
	Fog       bool
	Blend     bool
	DepthTest bool
	AlphaTest bool
	TMU       [MaxTMUs]bool
	Scissor   bool
	Stencil   bool
	LogicOp   bool
}

const (
	featureFog = iota
	featureBlend
	featureDepthTest
	featureAlphaTest
	featureTMU0
	featureTMU1
	featureScissor
	featureStencil
	featureLogicOp
)

// Address implements Register.
func (FeatureEnable) Address() Address { return AddrFeatureEnable }

// Value implements Register.
func (r FeatureEnable) Value() uint32 {
	return b2u(r.Fog)<<featureFog |
		b2u(r.Blend)<<featureBlend |
		b2u(r.DepthTest)<<featureDepthTest |
		b2u(r.AlphaTest)<<featureAlphaTest |
		b2u(r.TMU[0])<<featureTMU0 |
		b2u(r.TMU[1])<<featureTMU1 |
		b2u(r.Scissor)<<featureScissor |
		b2u(r.Stencil)<<featureStencil |
		b2u(r.LogicOp)<<featureLogicOp
}

// DecodeFeatureEnable unpacks a FeatureEnable register word.
func DecodeFeatureEnable(v uint32) FeatureEnable {
	return FeatureEnable{
		Fog:       flag(v, featureFog),
		Blend:     flag(v, featureBlend),
		DepthTest: flag(v, featureDepthTest),
		AlphaTest: flag(v, featureAlphaTest),
		TMU:       [MaxTMUs]bool{flag(v, featureTMU0), flag(v, featureTMU1)},
		Scissor:   flag(v, featureScissor),
		Stencil:   flag(v, featureStencil),
		LogicOp:   flag(v, featureLogicOp),
	}
}
