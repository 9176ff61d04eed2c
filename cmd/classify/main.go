// Command classify sends an image through the classifier, either to a deployed
// endpoint or through an in-process pipeline.
//
//	classify -image cat.jpg -endpoint https://example.com/prod/predict
//	classify -solid -model modelo_opset17.onnx
package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/Brownie44l1/catdog-api/internal/model"
	"github.com/Brownie44l1/catdog-api/internal/pipeline"
	"github.com/Brownie44l1/catdog-api/internal/setup"
	"golang.org/x/image/draw"
)

// lightBlue matches PIL's "lightblue".
var lightBlue = color.RGBA{R: 173, G: 216, B: 230, A: 255}

func main() {
	imagePath := flag.String("image", "", "Path to the image to classify")
	solid := flag.Bool("solid", false, "Classify a generated 180x180 light blue image")
	endpoint := flag.String("endpoint", "", "URL of a deployed /predict endpoint")
	modelPath := flag.String("model", "modelo_opset17.onnx", "Model used when no endpoint is given")
	libraryPath := flag.String("onnxruntime-lib", "", "Path to the onnxruntime shared library")
	debug := flag.Bool("debug", false, "Debug enabled")
	flag.Parse()

	log, err := setup.NewLogger(*debug)
	if err != nil {
		panic("Failed init logger")
	}
	defer func() {
		_ = log.Sync()
	}()

	var data []byte
	switch {
	case *imagePath != "":
		data, err = os.ReadFile(*imagePath)
	case *solid:
		data, err = solidJPEG(180, 180, lightBlue)
	default:
		fmt.Fprintln(os.Stderr, "usage: classify (-image <path> | -solid) [-endpoint <url> | -model <path>]")
		os.Exit(2)
	}
	if err != nil {
		log.Fatalw("failed to read image", "error", err)
	}

	body, err := json.Marshal(map[string]string{"image": base64.StdEncoding.EncodeToString(data)})
	if err != nil {
		log.Fatalw("failed to encode request", "error", err)
	}

	var resp pipeline.Response
	if *endpoint != "" {
		resp, err = postRemote(*endpoint, body)
		if err != nil {
			log.Fatalw("request failed", "endpoint", *endpoint, "error", err)
		}
	} else {
		p := pipeline.New(
			pipeline.ModelLoader(*modelPath, model.Options{LibraryPath: *libraryPath}, log),
			model.DefaultLabels,
			log,
		)
		defer model.Shutdown()
		defer p.Close()
		resp = p.Handle(context.Background(), pipeline.Event{
			Method: http.MethodPost,
			Path:   "/predict",
			Body:   string(body),
		})
	}

	out, _ := json.MarshalIndent(resp, "", "  ")
	fmt.Println(string(out))
	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}

func solidJPEG(width, height int, c color.Color) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 95}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func postRemote(endpoint string, body []byte) (pipeline.Response, error) {
	client := &http.Client{Timeout: 60 * time.Second}
	httpResp, err := client.Post(endpoint, "application/json", bytes.NewReader(body))
	if err != nil {
		return pipeline.Response{}, err
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return pipeline.Response{}, fmt.Errorf("failed to read response: %w", err)
	}
	return pipeline.Response{
		StatusCode: httpResp.StatusCode,
		Headers:    map[string]string{"Content-Type": httpResp.Header.Get("Content-Type")},
		Body:       string(respBody),
	}, nil
}
