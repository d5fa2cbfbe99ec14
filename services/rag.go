package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const ragCollection = "aiquiz_chunks"

// Dimensión de text-embedding-004
const embeddingDim = 768

// Chunk es un fragmento indexado de un fichero, con su puntuación de
// similitud cuando procede de una búsqueda.
type Chunk struct {
	FileID     string  `json:"file_id"`
	SubtopicID string  `json:"subtopic_id"`
	Text       string  `json:"text"`
	Score      float32 `json:"score"`
}

// Embedder convierte texto en un vector. En producción es Gemini; los tests
// inyectan uno determinista.
type Embedder func(ctx context.Context, text string) ([]float32, error)

// Engine es el motor de búsqueda semántica sobre los ficheros subidos.
// La implementación se elige una sola vez al arrancar, según configuración.
type Engine interface {
	Index(ctx context.Context, fileID, subtopicID string, chunks []string) error
	Search(ctx context.Context, subtopicID, query string, limit int) ([]Chunk, error)
	DeleteFile(ctx context.Context, fileID string) error
}

// NewEngine construye el motor RAG indicado: "qdrant" o "memory".
func NewEngine(engine, qdrantHost string, qdrantPort int) (Engine, error) {
	switch engine {
	case "qdrant":
		return NewQdrantEngine(qdrantHost, qdrantPort, GeminiEmbedText)
	case "memory", "":
		return NewMemoryEngine(GeminiEmbedText), nil
	default:
		return nil, fmt.Errorf("motor RAG desconocido: %q", engine)
	}
}

// ===== Qdrant =====

type QdrantEngine struct {
	client *qdrant.Client
	embed  Embedder
}

func NewQdrantEngine(host string, port int, embed Embedder) (*QdrantEngine, error) {
	client, err := qdrant.NewClient(&qdrant.Config{Host: host, Port: port})
	if err != nil {
		return nil, fmt.Errorf("no se pudo conectar a Qdrant: %w", err)
	}

	ctx := context.Background()
	exists, err := client.CollectionExists(ctx, ragCollection)
	if err != nil {
		return nil, err
	}
	if !exists {
		err = client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: ragCollection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     embeddingDim,
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return nil, fmt.Errorf("no se pudo crear la colección: %w", err)
		}
	}

	return &QdrantEngine{client: client, embed: embed}, nil
}

func (e *QdrantEngine) Index(ctx context.Context, fileID, subtopicID string, chunks []string) error {
	points := make([]*qdrant.PointStruct, 0, len(chunks))
	for _, chunk := range chunks {
		vec, err := e.embed(ctx, chunk)
		if err != nil {
			return err
		}
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(uuid.NewString()),
			Vectors: qdrant.NewVectors(vec...),
			Payload: qdrant.NewValueMap(map[string]any{
				"file_id":     fileID,
				"subtopic_id": subtopicID,
				"text":        chunk,
			}),
		})
	}
	if len(points) == 0 {
		return nil
	}

	_, err := e.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: ragCollection,
		Points:         points,
	})
	return err
}

func (e *QdrantEngine) Search(ctx context.Context, subtopicID, query string, limit int) ([]Chunk, error) {
	vec, err := e.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := e.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: ragCollection,
		Query:          qdrant.NewQuery(vec...),
		Limit:          qdrant.PtrOf(uint64(limit)),
		Filter: &qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("subtopic_id", subtopicID),
			},
		},
		WithPayload: qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, err
	}

	chunks := make([]Chunk, 0, len(results))
	for _, p := range results {
		chunks = append(chunks, Chunk{
			FileID:     p.Payload["file_id"].GetStringValue(),
			SubtopicID: subtopicID,
			Text:       p.Payload["text"].GetStringValue(),
			Score:      p.Score,
		})
	}
	return chunks, nil
}

func (e *QdrantEngine) DeleteFile(ctx context.Context, fileID string) error {
	_, err := e.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ragCollection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("file_id", fileID),
			},
		}),
	})
	return err
}

// ===== En memoria =====

// MemoryEngine guarda los fragmentos en un slice protegido por mutex.
// Pensado para desarrollo y tests, sin dependencias externas.
type MemoryEngine struct {
	mu     sync.RWMutex
	embed  Embedder
	chunks []memoryChunk
}

type memoryChunk struct {
	fileID     string
	subtopicID string
	text       string
	vector     []float32
}

func NewMemoryEngine(embed Embedder) *MemoryEngine {
	return &MemoryEngine{embed: embed}
}

func (e *MemoryEngine) Index(ctx context.Context, fileID, subtopicID string, chunks []string) error {
	for _, chunk := range chunks {
		vec, err := e.embed(ctx, chunk)
		if err != nil {
			return err
		}
		e.mu.Lock()
		e.chunks = append(e.chunks, memoryChunk{
			fileID:     fileID,
			subtopicID: subtopicID,
			text:       chunk,
			vector:     vec,
		})
		e.mu.Unlock()
	}
	return nil
}

func (e *MemoryEngine) Search(ctx context.Context, subtopicID, query string, limit int) ([]Chunk, error) {
	vec, err := e.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	var results []Chunk
	for _, c := range e.chunks {
		if c.subtopicID != subtopicID {
			continue
		}
		results = append(results, Chunk{
			FileID:     c.fileID,
			SubtopicID: c.subtopicID,
			Text:       c.text,
			Score:      cosineSimilarity(vec, c.vector),
		})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Score > results[j].Score })
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (e *MemoryEngine) DeleteFile(ctx context.Context, fileID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	kept := e.chunks[:0]
	for _, c := range e.chunks {
		if c.fileID != fileID {
			kept = append(kept, c)
		}
	}
	e.chunks = kept
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
