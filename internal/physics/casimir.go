package physics

import "math"

// StaticTileEnergy is the parallel-plate Casimir energy for one tile:
// U = -(π² ħc / (720 a³)) · A. Negative, the plates attract. Gap and area
// are clamped before use, never rejected.
func StaticTileEnergy(gapNm, areaCm2 float64) float64 {
	a := clamp(gapNm, GapMinNm, GapMaxNm) * 1e-9
	area := clamp(areaCm2, TileAreaMinCm2, TileAreaMaxCm2) * 1e-4
	return -(math.Pi * math.Pi * HBarC) / (720 * a * a * a) * area
}

// casimirStage fills the static → geometric → mechanical energy cascade.
// The geometric factor enters cubed. QMech multiplies last: it is forced to
// zero only in standby, and restored to the unit seed anywhere else if a
// previous idle pass left it at zero.
func casimirStage(s *PipelineState) {
	s.GapNm = clamp(s.GapNm, GapMinNm, GapMaxNm)
	s.TileAreaCm2 = clamp(s.TileAreaCm2, TileAreaMinCm2, TileAreaMaxCm2)
	s.GammaGeo = clamp(s.GammaGeo, GammaGeoMin, GammaGeoMax)

	if s.Mode == ModeStandby {
		s.QMech = 0
	} else if s.QMech == 0 {
		s.QMech = QMechSeed
	} else {
		s.QMech = clamp(s.QMech, QMechMin, QMechMax)
	}

	g3 := s.GammaGeo * s.GammaGeo * s.GammaGeo
	s.UStaticJ = StaticTileEnergy(s.GapNm, s.TileAreaCm2)
	s.UGeoJ = s.UStaticJ * g3
	s.UQJ = s.UGeoJ * s.QMech
}
