package renderer

import (
	"encoding/binary"
	"fmt"
	"math"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/ember-go/extract"
	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"
)

// cachedMesh is one entity's GPU-resident mesh data: vertex/index buffers, the
// per-mesh model uniform, and the bind groups wiring them into the GBuffer and
// shadow pipelines. Buffers are reused across frames and reallocated only when
// the mesh's byte lengths change.
type cachedMesh struct {
	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   uint32

	// last-seen byte lengths; in-place rewrite is allowed only when both match
	vertexLen int
	indexLen  int

	format    extract.VertexFormat
	transform [16]float32

	// object-space bounding sphere, used for camera frustum culling
	boundsCenter [3]float32
	boundsRadius float32

	modelBuffer       *wgpu.Buffer
	meshBindGroup     *wgpu.BindGroup
	shadowBindGroup   *wgpu.BindGroup
	materialBindGroup *wgpu.BindGroup

	// per-mesh material textures; nil slots fall back to shared defaults
	materialTextures []*wgpu.Texture
	materialViews    []*wgpu.TextureView
}

// meshAllocator is the slice of the GPU backend the mesh cache needs. The
// wgpu backend implements it; tests substitute a stub.
type meshAllocator interface {
	// allocMeshBuffers creates and fills new vertex and index buffers.
	allocMeshBuffers(id uint64, vertexData, indexData []byte) (*wgpu.Buffer, *wgpu.Buffer, error)

	// writeMeshBuffers overwrites an entry's buffer contents in place. Lengths
	// must match the original allocation.
	writeMeshBuffers(entry *cachedMesh, vertexData, indexData []byte)

	// allocMeshBindings creates the entry's model uniform buffer and bind
	// groups, including the material bind group when material is non-nil.
	allocMeshBindings(id uint64, entry *cachedMesh, material *extract.PbrMaterial) error

	// releaseMesh frees every GPU resource owned by the entry.
	releaseMesh(entry *cachedMesh)
}

// meshCache maps entity ids to cached GPU mesh data. It is exclusively owned
// by one renderer instance; the renderer's mutex serializes access.
type meshCache struct {
	alloc   meshAllocator
	log     *zap.Logger
	entries map[uint64]*cachedMesh

	// boundsPool runs the per-mesh bounding sphere computation across CPU
	// cores during update. Workers persist across frames, avoiding per-frame
	// goroutine spawn/teardown overhead.
	boundsPool worker.DynamicWorkerPool
}

func newMeshCache(alloc meshAllocator, log *zap.Logger) *meshCache {
	return &meshCache{
		alloc:      alloc,
		log:        log,
		entries:    make(map[uint64]*cachedMesh),
		boundsPool: worker.NewDynamicWorkerPool(max(runtime.NumCPU()-1, 1), 256, 1*time.Second),
	}
}

// update synchronizes the cache with one frame's extracted mesh set:
// unseen visible meshes get new buffers, unchanged ones are rewritten in
// place, count changes force reallocation, and entries absent or invisible in
// this frame are removed. Malformed meshes are skipped with a warning;
// allocation failures abort the update.
//
// Parameters:
//   - meshes: the frame's extracted mesh set
//
// Returns:
//   - error: an error if buffer allocation fails; nil otherwise
func (c *meshCache) update(meshes extract.Meshes) error {
	seen := make(map[uint64]bool, len(meshes))

	// Bounding sphere recomputes are fanned out to the compute pool; each
	// task owns exactly one entry. A WaitGroup provides the barrier since
	// update must not return with bounds still in flight.
	var wg sync.WaitGroup
	taskID := 0
	submitBounds := func(entry *cachedMesh, vertexData []byte, stride int) {
		wg.Add(1)
		id := taskID
		taskID++
		c.boundsPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				entry.boundsCenter, entry.boundsRadius = computeBounds(vertexData, stride)
				return nil, nil
			},
		})
	}

	for id, mesh := range meshes {
		if mesh == nil || !mesh.Visible || len(mesh.VertexData) == 0 || len(mesh.IndexData) == 0 {
			continue
		}
		if err := mesh.Validate(); err != nil {
			c.log.Warn("skipping malformed mesh", zap.Uint64("entity", id), zap.Error(err))
			continue
		}

		entry, ok := c.entries[id]
		if ok && entry.vertexLen == len(mesh.VertexData) && entry.indexLen == len(mesh.IndexData) && entry.format == mesh.Format {
			// Counts unchanged: rewrite contents in place, no reallocation.
			c.alloc.writeMeshBuffers(entry, mesh.VertexData, mesh.IndexData)
			entry.transform = mesh.Transform
			submitBounds(entry, mesh.VertexData, mesh.Format.Stride())
			seen[id] = true
			continue
		}

		if ok {
			// Counts changed: the old buffers cannot hold the new data.
			c.alloc.releaseMesh(entry)
			delete(c.entries, id)
		}

		entry, err := c.insert(id, mesh)
		if err != nil {
			wg.Wait()
			return fmt.Errorf("mesh %d: %w", id, err)
		}
		c.entries[id] = entry
		submitBounds(entry, mesh.VertexData, mesh.Format.Stride())
		seen[id] = true
	}
	wg.Wait()

	// Frame-local garbage collection: anything not seen this frame goes away.
	for id, entry := range c.entries {
		if !seen[id] {
			c.alloc.releaseMesh(entry)
			delete(c.entries, id)
		}
	}

	return nil
}

func (c *meshCache) insert(id uint64, mesh *extract.Mesh) (*cachedMesh, error) {
	vbuf, ibuf, err := c.alloc.allocMeshBuffers(id, mesh.VertexData, mesh.IndexData)
	if err != nil {
		return nil, err
	}

	entry := &cachedMesh{
		vertexBuffer: vbuf,
		indexBuffer:  ibuf,
		indexCount:   uint32(mesh.IndexCount()),
		vertexLen:    len(mesh.VertexData),
		indexLen:     len(mesh.IndexData),
		format:       mesh.Format,
		transform:    mesh.Transform,
	}

	var material *extract.PbrMaterial
	if mesh.Format == extract.VertexFormatPositionNormalUv {
		material = mesh.Material
	}
	if err := c.alloc.allocMeshBindings(id, entry, material); err != nil {
		c.alloc.releaseMesh(entry)
		return nil, err
	}

	return entry, nil
}

// computeBounds derives an object-space bounding sphere from interleaved
// vertex data: an axis-aligned box first, then the tightest sphere around its
// center. Positions are the first three floats of every vertex.
func computeBounds(vertexData []byte, stride int) ([3]float32, float32) {
	if stride <= 0 || len(vertexData) < stride {
		return [3]float32{}, 0
	}

	var minB, maxB [3]float32
	first := true
	for off := 0; off+12 <= len(vertexData); off += stride {
		var p [3]float32
		for i := 0; i < 3; i++ {
			p[i] = math.Float32frombits(binary.LittleEndian.Uint32(vertexData[off+i*4 : off+i*4+4]))
		}
		if first {
			minB, maxB = p, p
			first = false
			continue
		}
		for i := 0; i < 3; i++ {
			if p[i] < minB[i] {
				minB[i] = p[i]
			}
			if p[i] > maxB[i] {
				maxB[i] = p[i]
			}
		}
	}

	center := [3]float32{
		(minB[0] + maxB[0]) * 0.5,
		(minB[1] + maxB[1]) * 0.5,
		(minB[2] + maxB[2]) * 0.5,
	}
	dx := maxB[0] - center[0]
	dy := maxB[1] - center[1]
	dz := maxB[2] - center[2]
	radius := math32.Sqrt(dx*dx + dy*dy + dz*dz)
	return center, radius
}

// len returns the number of cached entries.
func (c *meshCache) len() int {
	return len(c.entries)
}

// release frees every cached entry.
func (c *meshCache) release() {
	for id, entry := range c.entries {
		c.alloc.releaseMesh(entry)
		delete(c.entries, id)
	}
}
