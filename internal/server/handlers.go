package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo"
	"go.uber.org/zap"

	"github.com/inodb/spliceai-lookup/internal/liftover"
	"github.com/inodb/spliceai-lookup/internal/resolve"
	"github.com/inodb/spliceai-lookup/internal/scorecache"
)

const (
	spliceAIExample = "/spliceai/?hg=38&distance=50&mask=0&variant=chr8-140300615-C-G"
	liftoverExample = "/liftover/?hg=hg19-to-hg38&format=interval&chrom=chr8&start=140300615&end=140300620"
)

func (s *Server) spliceAI(c echo.Context) error {
	params := requestParams(c, "variant")

	variant := cleanVariant(params["variant"])
	if variant == "" {
		return errorJSON(c, fmt.Sprintf(`"variant" not specified. For example: %s`, spliceAIExample))
	}

	genomeVersion, ok := params["hg"]
	if !ok || genomeVersion == "" {
		return errorJSON(c, fmt.Sprintf(`"hg" not specified. The URL must include an "hg" arg: hg=37 or hg=38. For example: %s`, spliceAIExample))
	}
	if genomeVersion != "37" && genomeVersion != "38" {
		return errorJSON(c, fmt.Sprintf(`Invalid "hg" value: "%s". The value must be either "37" or "38". For example: %s`, genomeVersion, spliceAIExample))
	}

	distance := scorecache.DefaultDistance
	if d, ok := params["distance"]; ok {
		n, err := strconv.Atoi(strings.TrimSpace(d))
		if err != nil {
			return errorJSON(c, fmt.Sprintf(`Invalid "distance": "%s". The value must be an integer.`, d))
		}
		if n > s.cfg.MaxDistance {
			return errorJSON(c, fmt.Sprintf(`Invalid "distance": "%s". The value must be < %d.`, d, s.cfg.MaxDistance))
		}
		if n < 0 {
			return errorJSON(c, fmt.Sprintf(`Invalid "distance": "%s". The value must not be negative.`, d))
		}
		distance = n
	}

	maskParam, ok := params["mask"]
	if !ok {
		maskParam = strconv.Itoa(resolve.DefaultMask)
	}
	if maskParam != "0" && maskParam != "1" {
		return errorJSON(c, fmt.Sprintf(`Invalid "mask" value: "%s". The value must be either "0" or "1". For example: %s`, maskParam, spliceAIExample))
	}
	mask, _ := strconv.Atoi(maskParam)

	logger := requestLogger(c).With(
		zap.String("variant", variant),
		zap.String("hg", genomeVersion),
		zap.Int("distance", distance),
		zap.Int("mask", mask))
	logger.Info("resolving variant")

	res := s.resolver.Resolve(c.Request().Context(), variant, genomeVersion, distance, mask)
	if res.Err != nil {
		logger.Info("variant not resolved", zap.Error(res.Err))
		return c.JSON(http.StatusBadRequest, res)
	}

	logger.Info("variant resolved",
		zap.String("source", string(res.Source)),
		zap.Strings("scores", res.Scores))
	return c.JSON(http.StatusOK, res)
}

func (s *Server) liftover(c echo.Context) error {
	params := requestParams(c, "format")

	dir, err := liftover.ParseDirection(params["hg"])
	if err != nil {
		return errorJSON(c, fmt.Sprintf(`"hg" param error. It should be set to %s or %s. For example: %s`,
			liftover.HG19ToHG38, liftover.HG38ToHG19, liftoverExample))
	}

	format, err := liftover.ParseFormat(params["format"])
	if err != nil {
		return errorJSON(c, fmt.Sprintf(`"format" param error. It should be set to %s or %s or %s. For example: %s`,
			liftover.FormatInterval, liftover.FormatVariant, liftover.FormatPosition, liftoverExample))
	}

	req := liftover.Request{Direction: dir, Format: format, Chrom: params["chrom"]}
	if req.Chrom == "" {
		return errorJSON(c, `"chrom" param not specified`)
	}

	switch format {
	case liftover.FormatInterval:
		if req.Start, err = intParam(params, "start"); err != nil {
			return errorJSON(c, err.Error())
		}
		if req.End, err = intParam(params, "end"); err != nil {
			return errorJSON(c, err.Error())
		}
	case liftover.FormatPosition, liftover.FormatVariant:
		if req.Pos, err = intParam(params, "pos"); err != nil {
			return errorJSON(c, err.Error())
		}
	}

	if format == liftover.FormatVariant {
		req.Ref = strings.ToUpper(strings.TrimSpace(params["ref"]))
		req.Alt = strings.ToUpper(strings.TrimSpace(params["alt"]))
		if req.Ref == "" {
			return errorJSON(c, `"ref" param not specified`)
		}
		if req.Alt == "" {
			return errorJSON(c, `"alt" param not specified`)
		}
	}

	logger := requestLogger(c).With(
		zap.String("hg", string(dir)),
		zap.String("format", string(format)),
		zap.String("chrom", req.Chrom))

	res, err := s.lifter.Liftover(c.Request().Context(), req)
	if err != nil {
		var te *liftover.ToolError
		if errors.As(err, &te) {
			logger.Error("liftover tool failed", zap.Error(err))
		} else {
			logger.Info("liftover failed", zap.Error(err))
		}
		return errorJSON(c, err.Error())
	}

	logger.Info("liftover done",
		zap.String("output_chrom", res.OutputChrom),
		zap.Int64("output_start", res.OutputStart),
		zap.Int64("output_end", res.OutputEnd),
		zap.String("output_strand", res.OutputStrand))
	return c.JSON(http.StatusOK, res)
}

func intParam(params map[string]string, key string) (int64, error) {
	v, ok := params[key]
	if !ok || v == "" {
		return 0, fmt.Errorf(`"%s" param not specified`, key)
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf(`Invalid "%s": "%s". The value must be an integer.`, key, v)
	}
	return n, nil
}
