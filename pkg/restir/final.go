package restir

// finalSampleEvaluation turns each pass's reservoir into the radiance record
// consumed by shading
func (r *ReSTIR) finalSampleEvaluation(pass int, withVisibility, reuseVisibility bool) {
	ev := r.evaluator()
	contexts := r.buf.currentContexts()
	set := &r.buf.passes[pass]
	out := r.buf.final[pass]
	misWeight := 1 / float64(len(r.buf.passes))

	r.forEachPixel(func(x, y, i int) {
		c := &contexts[i]
		res := set.current[i]
		fs := FinalSample{PathSample: res.PathSample, MISWeight: misWeight}

		switch res.PathSample {
		case PathEmission:
			fs.Direction = c.ViewDir
			fs.Li = c.Emission.Multiply(res.Weight)
		case PathLight:
			if !c.Valid {
				break
			}
			e := r.lights.Eval(res.LightSample, c.Position)
			fs.Direction = e.Direction
			fs.Distance = e.Distance
			if e.GeomFactor <= 0 || res.Weight <= 0 {
				break
			}
			if withVisibility && !c.Visible(ev, e) {
				if reuseVisibility {
					res.Weight = 0
					set.current[i] = res
				}
				break
			}
			fs.Li = e.Emission.Multiply(e.GeomFactor * res.Weight)
		}
		out[i] = fs
	})
}
